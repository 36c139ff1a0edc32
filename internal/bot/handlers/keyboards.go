package handlers

import (
	"github.com/go-telegram/bot/models"
)

// Reply keyboard button texts.
const (
	ButtonPlan     = "📝 برنامه مطالعاتی"
	ButtonAnalysis = "📊 تحلیل عملکرد"
	ButtonProfile  = "👤 پروفایل من"
	ButtonHelp     = "❓ راهنما"
	ButtonCancel   = "انصراف"
)

// Keyboard selects the reply keyboard attached to an outgoing message.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMain
	KeyboardProfile
	KeyboardCancel
)

func replyMarkup(k Keyboard) models.ReplyMarkup {
	var rows [][]string
	switch k {
	case KeyboardMain:
		rows = [][]string{{ButtonPlan, ButtonAnalysis}, {ButtonProfile, ButtonHelp}}
	case KeyboardProfile:
		rows = [][]string{{"/profile", "/help"}}
	case KeyboardCancel:
		rows = [][]string{{ButtonCancel}}
	default:
		return nil
	}

	keyboard := make([][]models.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, models.KeyboardButton{Text: text})
		}
		keyboard = append(keyboard, buttons)
	}
	return &models.ReplyKeyboardMarkup{Keyboard: keyboard, ResizeKeyboard: true}
}
