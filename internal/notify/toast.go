package notify

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/warpdl/reminder/internal/reminder"
)

// ToastAppID is the application id shown on Windows toasts.
const ToastAppID = "ReminderSkill"

// Toast shows a WinRT toast through PowerShell.
type Toast struct {
	Run Runner
}

const toastScript = `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$template = @'
<toast>
    <visual>
        <binding template="ToastText02">
            <text id="1">%s</text>
            <text id="2">%s</text>
        </binding>
    </visual>
</toast>
'@
$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml($template)
$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("%s").Show($toast)`

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// ToastScript returns the PowerShell program for the toast. Text is XML
// escaped and embedded in a literal here-string, so PowerShell does not
// expand it.
func ToastScript(title, message string) string {
	return fmt.Sprintf(toastScript, xmlEscape(title), xmlEscape(message), ToastAppID)
}

func (t *Toast) Notify(ctx context.Context, title, message string) error {
	err := t.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", ToastScript(title, message))
	if err != nil {
		return &reminder.NotificationRenderError{Platform: "windows", Err: err}
	}
	return nil
}
