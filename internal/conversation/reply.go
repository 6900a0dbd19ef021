package conversation

var categoryNames = map[string]string{
	"electrical": "электрикой",
	"plumbing":   "сантехникой",
	"appliances": "бытовой техникой",
	"renovation": "ремонтом",
}

// generateReply picks a deterministic template keyed by intent and the set of
// still-missing slots, so the same (intent, slot-state) always produces the
// same text.
func generateReply(intent string, ctx *Context) string {
	switch intent {
	case IntentGreeting:
		if ctx.Channel == "phone" {
			return "Здравствуйте, это автоматизированная система сервиса. Чем могу помочь?"
		}
		return "Здравствуйте! Я помогу вам решить вашу проблему. Опишите, что случилось."

	case IntentRequestService, IntentDescribeProblem:
		if ctx.Slots.ProblemCategory == "" {
			return "Понял, у вас есть проблема. Можете описать подробнее? Что именно не работает?"
		}
		name, ok := categoryNames[ctx.Slots.ProblemCategory]
		if !ok {
			name = "проблемой"
		}
		if ctx.Slots.Location == "" {
			return "Понял, проблема с " + name + ". Какой у вас адрес?"
		}
		if len(ctx.Slots.ProblemDescription) < 20 {
			return "Не могли бы вы описать проблему более подробно? Это поможет точнее оценить работу."
		}
		if len(ctx.Slots.MediaFiles) == 0 && (ctx.Slots.ProblemCategory == "electrical" || ctx.Slots.ProblemCategory == "plumbing") {
			return "Не могли бы вы прислать фото проблемного участка? Это поможет точнее определить стоимость."
		}
		return "Отлично, у меня достаточно информации. Сейчас рассчитаю стоимость и подберу мастера."

	case IntentUrgentRequest:
		if ctx.Slots.Urgency == UrgencyCritical {
			return "Понимаю, ситуация критическая. Сейчас найду ближайшего доступного мастера для срочного выезда."
		}
		return "Постараемся организовать выезд как можно скорее. Когда вам удобно?"

	case IntentConfirmPrice:
		return "Отлично! Мастер получит ваш заказ и свяжется с вами в ближайшее время. Спасибо!"

	case IntentRejectPrice:
		return "Понимаю. Если передумаете или нужна будет помощь - обращайтесь!"

	case IntentGratitude:
		return "Всегда рад помочь! Если будут еще вопросы - обращайтесь."
	}

	return "Я понял ваше сообщение. Можете уточнить детали?"
}
