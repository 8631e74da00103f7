package service

import "fmt"

// TemplateFunc чистая функция рендеринга текста уведомления из payload'а
type TemplateFunc func(data map[string]any) string

func str(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func strOr(data map[string]any, key, fallback string) string {
	if s := str(data, key); s != "" {
		return s
	}
	return fallback
}

func val(data map[string]any, key string) any {
	if data == nil {
		return ""
	}
	if v, ok := data[key]; ok {
		return v
	}
	return ""
}

// notificationTemplates реестр шаблонов по типу уведомления.
// Неизвестный тип — ошибка ErrUnsupportedNotificationType, не паника.
var notificationTemplates = map[string]TemplateFunc{
	"festival_requested": func(data map[string]any) string {
		return fmt.Sprintf("Festival %q has been created and is awaiting approval.", str(data, "festivalName"))
	},
	"festival_approval": func(data map[string]any) string {
		return fmt.Sprintf("Festival %q has been approved by the admin!", str(data, "festivalName"))
	},
	"festival_reject": func(data map[string]any) string {
		return fmt.Sprintf("Festival %q has been rejected. Reason: %s.",
			str(data, "festivalName"), strOr(data, "reason", "No specific reason"))
	},
	"festival_ongoing": func(data map[string]any) string {
		return fmt.Sprintf("Festival %q is now ongoing, join in!", str(data, "festivalName"))
	},
	"festival_participant": func(data map[string]any) string {
		return fmt.Sprintf("%q is now interested in festival %q", str(data, "userName"), str(data, "festivalName"))
	},
	"festival_comment": func(data map[string]any) string {
		return fmt.Sprintf("Festival %q has a new comment: %q", str(data, "festivalName"), str(data, "comment"))
	},
	"group_add_member": func(data map[string]any) string {
		return fmt.Sprintf("You have been added to group %q", str(data, "groupName"))
	},
	"group_up_role": func(data map[string]any) string {
		return fmt.Sprintf("You have been promoted to treasurer of group %q", str(data, "groupName"))
	},
	"group_down_role": func(data map[string]any) string {
		return fmt.Sprintf("You have been demoted to member of group %q", str(data, "groupName"))
	},
	"group_remove_member": func(data map[string]any) string {
		return fmt.Sprintf("You have been removed from group %q", str(data, "groupName"))
	},
	"booth_pending": func(data map[string]any) string {
		return fmt.Sprintf("Group %s has requested to register booth %q in festival %q.",
			str(data, "groupName"), str(data, "boothName"), str(data, "festivalName"))
	},
	"booth_approval": func(data map[string]any) string {
		return fmt.Sprintf("The teacher has approved booth %q in festival %q.",
			str(data, "boothName"), str(data, "festivalName"))
	},
	"booth_rejected": func(data map[string]any) string {
		return fmt.Sprintf("The teacher has rejected booth %q in festival %q. Reason: %s.",
			str(data, "boothName"), str(data, "festivalName"), strOr(data, "reason", "No specific reason"))
	},
	"booth_active": func(data map[string]any) string {
		return fmt.Sprintf("Booth %q in festival %q has been activated for sales.",
			str(data, "boothName"), str(data, "festivalName"))
	},
	"booth_updated": func(data map[string]any) string {
		return fmt.Sprintf("Group %s has resubmitted booth %q in festival %q for review.",
			str(data, "groupName"), str(data, "boothName"), str(data, "festivalName"))
	},
	"festival_completed": func(data map[string]any) string {
		return fmt.Sprintf("Festival %q has ended. You can now withdraw your commission.", str(data, "festivalName"))
	},
	"festival_commission": func(data map[string]any) string {
		return fmt.Sprintf("The system has withdrawn %v from festival %q.",
			val(data, "amount"), str(data, "festivalName"))
	},
}

// RenderTemplate рендерит текст уведомления. Для одного и того же (type, data)
// результат всегда побайтово одинаковый.
func RenderTemplate(notificationType string, data map[string]any) (string, error) {
	templateFn, ok := notificationTemplates[notificationType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedNotificationType, notificationType)
	}

	return templateFn(data), nil
}
