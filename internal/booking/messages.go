package booking

import (
	"fmt"
	"strings"

	"github.com/yuemei/linebot/internal/line"
)

// Outbound copy for the booking dialogue. Every prompt that expects an
// enumerated answer ships a quick-reply menu whose tap injects the option
// label as plain text, so menus and typed answers share one validator.

func PromptCategory() line.Message {
	return line.NewMenu("歡迎預約悅美診所療程！請選擇療程類別：", categoryNames())
}

func PromptTreatment(category string) line.Message {
	return line.NewText(fmt.Sprintf("已選擇「%s」。請輸入想預約的療程名稱（例如：皮秒雷射）：", category))
}

func PromptName() line.Message {
	return line.NewText("請輸入您的姓名：")
}

func PromptPhone() line.Message {
	return line.NewText("請輸入您的手機號碼（09 開頭共 10 碼）：")
}

func PromptDate() line.Message {
	return line.NewText("請輸入希望預約的日期（格式 YYYY-MM-DD，例如 2026-03-10）：")
}

func PromptTime() line.Message {
	return line.NewMenu("請選擇希望的時段：", TimeSlots)
}

func PromptNotes() line.Message {
	return line.NewText("最後，有其他備註嗎？沒有請輸入「無」或 none：")
}

func ErrCategory() line.Message {
	return line.NewMenu("抱歉，找不到這個療程類別，請從下方選單選擇：", categoryNames())
}

func ErrName() line.Message {
	return line.NewText("姓名至少需要 2 個字，請重新輸入：")
}

func ErrPhone() line.Message {
	return line.NewText("手機號碼格式不正確，請輸入 09 開頭共 10 碼的號碼（例如 0912345678）：")
}

func ErrDate() line.Message {
	return line.NewText("日期格式不正確或已過期，請輸入今天以後的日期（格式 YYYY-MM-DD）：")
}

func ErrTime() line.Message {
	return line.NewMenu("抱歉，這個時段無法預約，請從下方時段選擇：", TimeSlots)
}

func CancelAck() line.Message {
	return line.NewText("已取消本次預約流程。想重新預約時，隨時輸入「預約」即可。")
}

// FailureMessage is the generic reply when persistence fails. The session is
// gone by the time this is sent, so the user can simply start over.
func FailureMessage() line.Message {
	return line.NewText("抱歉，預約送出時發生問題，請稍後再試一次，或直接來電診所由專人為您服務。")
}

// Confirmation echoes the recorded booking back to the requester.
func Confirmation(b Booking) line.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ 預約申請已送出（編號 #%d）\n\n", b.ID)
	fmt.Fprintf(&sb, "療程類別：%s\n", b.TreatmentCategory)
	fmt.Fprintf(&sb, "療程項目：%s\n", b.TreatmentName)
	fmt.Fprintf(&sb, "日期：%s\n", b.PreferredDate)
	fmt.Fprintf(&sb, "時段：%s\n", b.PreferredTime)
	if b.Notes != "" {
		fmt.Fprintf(&sb, "備註：%s\n", b.Notes)
	}
	sb.WriteString("\n診所確認後將與您聯繫。")
	return line.NewText(sb.String())
}

// AdminAlert is pushed to the clinic admin for every new booking. It carries
// the contact phone, which the customer-facing confirmation omits.
func AdminAlert(b Booking) line.Message {
	return line.NewText(fmt.Sprintf(
		"🔔 新預約 #%d\n姓名：%s\n電話：%s\n療程：%s / %s\n日期：%s %s\n備註：%s",
		b.ID, b.CustomerName, b.CustomerPhone,
		b.TreatmentCategory, b.TreatmentName,
		b.PreferredDate, b.PreferredTime,
		orNone(b.Notes),
	))
}

// AdminCancelAlert is pushed when a user cancels an existing booking.
func AdminCancelAlert(b Booking) line.Message {
	return line.NewText(fmt.Sprintf(
		"❌ 預約取消 #%d\n姓名：%s\n電話：%s\n日期：%s %s",
		b.ID, b.CustomerName, b.CustomerPhone, b.PreferredDate, b.PreferredTime,
	))
}

// Summary renders one booking for the query listing. Bookings that can still
// be cancelled carry a cancel hint plus a one-tap cancel action; the tap
// injects the same command the hint tells the user to type.
func Summary(b Booking) line.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s\n%s %s\n狀態:%s", b.ID, b.TreatmentName, b.PreferredDate, b.PreferredTime, statusLabel(b.Status))
	if !b.CanCancel() {
		return line.NewText(sb.String())
	}
	cmd := fmt.Sprintf("cancel #%d", b.ID)
	fmt.Fprintf(&sb, "\n如需取消請輸入: %s", cmd)
	return line.NewMenu(sb.String(), []string{cmd})
}

func statusLabel(s Status) string {
	switch s {
	case StatusPending:
		return "待確認"
	case StatusConfirmed:
		return "已確認"
	case StatusCompleted:
		return "已完成"
	case StatusCancelled:
		return "已取消"
	}
	return string(s)
}

func categoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}

func orNone(s string) string {
	if s == "" {
		return "無"
	}
	return s
}
