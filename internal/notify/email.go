package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
)

// EmailConfig is the SMTP relay configuration.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// Enabled reports whether enough is configured to talk to a relay.
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// EmailMessage is one outgoing HTML email.
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// EmailSender delivers messages.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(cfg EmailConfig) *SMTPSender {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &SMTPSender{addr: fmt.Sprintf("%s:%d", cfg.Host, port), auth: auth, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	envelope := s.from
	if i := strings.LastIndex(envelope, "<"); i >= 0 {
		envelope = strings.Trim(envelope[i:], "<>")
	}
	return smtp.SendMail(s.addr, s.auth, envelope, msg.To, buildMIME(s.from, msg))
}

func buildMIME(from string, msg EmailMessage) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(strings.Join(msg.To, ",")))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return b.Bytes()
}

// headerValue folds CR and LF into spaces so a value cannot start a new
// header line.
func headerValue(v string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, v)
}

// LogSender only logs. Used when no relay is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg EmailMessage) error {
	s.Log.Info("email not sent, no SMTP relay configured",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// InviteData fills the invitation template.
type InviteData struct {
	CandidateName  string
	JobTitle       string
	CompanyName    string
	RoundName      string
	Mode           string
	Start          time.Time
	TimeZone       string
	Duration       int
	MeetingLink    string
	Instructions   string
	RecruiterEmail string
}

// BookedData fills the booking confirmation sent to the recruiter.
type BookedData struct {
	CandidateName string
	JobTitle      string
	RoundName     string
	Start         time.Time
	TimeZone      string
	BookedBy      string
}

var (
	inviteTmpl = template.Must(template.New("invite").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333">
<p>Dear {{.CandidateName}},</p>
<p>Your {{.RoundName}} interview for <strong>{{.JobTitle}}</strong> at {{.CompanyName}} is scheduled.</p>
<table>
<tr><td>When</td><td>{{local .Start .TimeZone}} ({{.TimeZone}})</td></tr>
<tr><td>Duration</td><td>{{.Duration}} minutes</td></tr>
<tr><td>Mode</td><td>{{.Mode}}</td></tr>
{{if .MeetingLink}}<tr><td>Join</td><td><a href="{{.MeetingLink}}">{{.MeetingLink}}</a></td></tr>{{end}}
</table>
{{if .Instructions}}<p>{{.Instructions}}</p>{{end}}
<p>Questions? Reply to {{.RecruiterEmail}}.</p>
<p>Arbeit Talent Portal</p>
</body></html>`))

	bookedTmpl = template.Must(template.New("booked").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333">
<p>{{.CandidateName}} confirmed the {{.RoundName}} interview for <strong>{{.JobTitle}}</strong>.</p>
<p>{{local .Start .TimeZone}} ({{.TimeZone}})</p>
<p>Booked by {{.BookedBy}}. Send the invite from the interview page.</p>
</body></html>`))

	tmplFuncs = template.FuncMap{"local": localTime}
)

func localTime(t time.Time, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon, 02 Jan 2006 15:04")
}

// InviteEmail renders the invitation for the candidate.
func InviteEmail(to string, d InviteData) (EmailMessage, error) {
	var b bytes.Buffer
	if err := inviteTmpl.Execute(&b, d); err != nil {
		return EmailMessage{}, fmt.Errorf("render invite: %w", err)
	}
	return EmailMessage{
		To:      []string{to},
		Subject: fmt.Sprintf("Interview Invitation: %s - %s", d.JobTitle, d.CompanyName),
		Body:    b.String(),
	}, nil
}

// BookedEmail renders the booking confirmation for the recruiter.
func BookedEmail(to string, d BookedData) (EmailMessage, error) {
	var b bytes.Buffer
	if err := bookedTmpl.Execute(&b, d); err != nil {
		return EmailMessage{}, fmt.Errorf("render booking confirmation: %w", err)
	}
	return EmailMessage{
		To:      []string{to},
		Subject: fmt.Sprintf("Interview Confirmed: %s - %s", d.CandidateName, d.JobTitle),
		Body:    b.String(),
	}, nil
}
