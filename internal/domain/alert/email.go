package alert

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jgoulah/oil-notifier/pkg/util"
)

// InlineImageName is the attachment name referenced by the HTML body as a
// cid: URL; the mail transport must embed the gauge image under it.
const InlineImageName = "gauge.jpg"

type emailContent struct {
	Warning    bool
	Percentage int
	Threshold  int
	Time       string
	HasImage   bool
}

func composeEmail(cfg Config, percentage int, at time.Time, hasImage bool, warning bool) (subject, textBody, htmlBody string) {
	content := emailContent{
		Warning:    warning,
		Percentage: percentage,
		Threshold:  cfg.Threshold,
		Time:       util.FormatLogTime(at),
		HasImage:   hasImage,
	}

	if warning {
		subject = fmt.Sprintf("LOW OIL WARNING: %d%% Remaining", percentage)
	} else {
		subject = fmt.Sprintf("Oil Level Status: %d%%", percentage)
	}

	var html strings.Builder
	if err := htmlTemplate.Execute(&html, content); err != nil {
		// The template is static and the data is plain values; render the
		// text body instead if this ever fires.
		return subject, renderText(content), ""
	}
	return subject, renderText(content), html.String()
}

func renderText(content emailContent) string {
	if content.Warning {
		return fmt.Sprintf(`****************************************
LOW OIL WARNING - ACTION REQUIRED
****************************************

Your oil tank is running low!

Current Level: %d%%
Status: LOW - ACTION REQUIRED
Alert Threshold: %d%%
Time: %s

Please schedule an oil delivery soon.

---
This is an automated message from your oil level monitoring system.
`, content.Percentage, content.Threshold, content.Time)
	}
	return fmt.Sprintf(`Oil Level Status Report
=======================

Your oil level is within normal range.

Current Level: %d%%
Status: OK
Alert Threshold: %d%%
Time: %s

---
This is an automated message from your oil level monitoring system.
`, content.Percentage, content.Threshold, content.Time)
}

var htmlTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
{{if .Warning}}<div style="background-color: #dc3545; color: white; padding: 15px; text-align: center; font-size: 18px; font-weight: bold;">
LOW OIL WARNING - ACTION REQUIRED
</div>
{{end}}<div style="padding: 20px;">
<h2 style="color: {{if .Warning}}#dc3545{{else}}#007bff{{end}};">Oil Level {{if .Warning}}Alert{{else}}Report{{end}}</h2>
<p>{{if .Warning}}<strong>Your oil tank is running low! Please schedule an oil delivery soon.</strong>{{else}}Your oil level is within normal range.{{end}}</p>

<table style="border-collapse: collapse; margin: 20px 0;">
<tr>
    <td style="padding: 10px; border: 1px solid #ddd;"><strong>Current Level:</strong></td>
    <td style="padding: 10px; border: 1px solid #ddd; font-size: 18px; font-weight: bold; color: {{if .Warning}}#dc3545{{else}}#28a745{{end}};">{{.Percentage}}%</td>
</tr>
<tr>
    <td style="padding: 10px; border: 1px solid #ddd;"><strong>Status:</strong></td>
    <td style="padding: 10px; border: 1px solid #ddd; color: {{if .Warning}}#dc3545{{else}}#28a745{{end}}; font-weight: bold;">{{if .Warning}}LOW - ACTION REQUIRED{{else}}OK{{end}}</td>
</tr>
<tr>
    <td style="padding: 10px; border: 1px solid #ddd;"><strong>Alert Threshold:</strong></td>
    <td style="padding: 10px; border: 1px solid #ddd;">{{.Threshold}}%</td>
</tr>
<tr>
    <td style="padding: 10px; border: 1px solid #ddd;"><strong>Time:</strong></td>
    <td style="padding: 10px; border: 1px solid #ddd;">{{.Time}}</td>
</tr>
</table>
{{if .HasImage}}
<p><strong>Gauge Reading:</strong></p>
<img src="cid:gauge.jpg" style="max-width: 600px; border: 2px solid #ccc;">
{{end}}
<hr style="margin-top: 30px;">
<p style="font-size: 12px; color: #666;">This is an automated message from your oil level monitoring system.</p>
</div>
</body>
</html>
`))
