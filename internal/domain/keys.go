package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeySession   CtxKey = "Session"
	KeyRequestID CtxKey = "RequestID"
)
