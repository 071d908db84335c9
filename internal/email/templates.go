package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title     string
	Heading   string
	Recipient string
}

type scheduleNoticeEmailData struct {
	baseEmailData
	ScheduleNotice
}

type purchaseOrderEmailData struct {
	baseEmailData
	PurchaseOrder
	FeeFormatted   string
	HasAttachments bool
}

type availabilityInquiryEmailData struct {
	baseEmailData
	AvailabilityInquiry
	TimeRange string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatYen(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if amount < 0 {
		neg, s = true, s[1:]
	}
	var out []byte
	for i, r := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, r)
	}
	if neg {
		return "-¥" + string(out)
	}
	return "¥" + string(out)
}
