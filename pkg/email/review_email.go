package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"resume-review-backend/internal/domain"
)

type reviewTemplate struct {
	subject    string
	heading    string
	lead       template.HTML
	notesLabel string
	closing    string
}

var reviewTemplates = map[domain.ResumeStatus]reviewTemplate{
	domain.ResumeStatusApproved: {
		subject:    "Your Resume Has Been Approved!",
		heading:    "Congratulations!",
		lead:       "Your resume has been <strong>approved</strong>.",
		notesLabel: "Notes",
		closing:    "Keep up the great work and continue refining your skills!",
	},
	domain.ResumeStatusNeedsRevision: {
		subject:    "Your Resume Needs Some Revisions",
		heading:    "Hi there!",
		lead:       "Your resume review is complete, but we'd like you to make a few improvements.",
		notesLabel: "Feedback",
		closing:    "Please revise and resubmit for another review.",
	},
	domain.ResumeStatusRejected: {
		subject:    "Your Resume Review Results",
		heading:    "Thanks for submitting your resume!",
		lead:       "After careful review, we were unable to approve your resume this time.",
		notesLabel: "Reviewer Notes",
		closing:    "Don't be discouraged. Use the feedback to make improvements and reapply!",
	},
}

const fallbackSubject = "Resume Review Update"

const reviewEmailTemplate = `<div style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Heading}}</h2>
  <p>{{if .Lead}}{{.Lead}}{{else}}Your resume status has been updated to: <strong>{{.Status}}</strong>.{{end}}</p>
  <p><strong>Score:</strong> {{.Score}}</p>
  {{- if .Notes}}
  <p><strong>{{.NotesLabel}}:</strong> {{.Notes}}</p>
  {{- end}}
  {{- if .Closing}}
  <p>{{.Closing}}</p>
  {{- end}}
  <hr style="margin: 24px 0; border: none; border-top: 1px solid #eee;" />
  <p style="font-size: 12px; color: #888;">
    This is an automated message from the Resume Review Platform.
  </p>
</div>`

var reviewTmpl = template.Must(template.New("review").Parse(reviewEmailTemplate))

type reviewEmailData struct {
	Heading    string
	Lead       template.HTML
	Status     string
	Score      string
	Notes      string
	NotesLabel string
	Closing    string
}

// ComposeReviewEmail renders the subject and HTML body for a review outcome.
// Notes are escaped; unknown statuses get the generic update message.
func ComposeReviewEmail(n domain.ReviewNotification) (string, string, error) {
	data := reviewEmailData{
		Heading:    "Hello!",
		Status:     string(n.Status),
		Score:      "N/A",
		NotesLabel: "Notes",
	}
	subject := fallbackSubject

	if t, ok := reviewTemplates[n.Status]; ok {
		subject = t.subject
		data.Heading = t.heading
		data.Lead = t.lead
		data.NotesLabel = t.notesLabel
		data.Closing = t.closing
	}
	if n.Score != nil {
		data.Score = strconv.Itoa(*n.Score)
	}
	if n.Notes != nil {
		data.Notes = *n.Notes
	}

	var body bytes.Buffer
	if err := reviewTmpl.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return subject, body.String(), nil
}
