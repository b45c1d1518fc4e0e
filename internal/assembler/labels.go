package assembler

import (
	"strings"

	"golang.org/x/text/language"
)

// Labels holds the fixed copy printed around generated content.
type Labels struct {
	Lang            string
	DateLabel       string
	TimeLabel       string
	LocationLabel   string
	LocationPending string
	OpenInMaps      string
	DetailsHeading  string
	DressCode       string
	Gifts           string
	Menu            string
	Notes           string
	Wishes          string
	Programme       string
	RSVPHeading     string
	RSVPIntro       string
	RSVPName        string
	RSVPComment     string
	RSVPSubmit      string
	RSVPSuccess     string
	RSVPError       string
	ContactHeading  string
	FooterNote      string
	RSVPOptions     map[string]string
	DressCodes      map[string]string
}

var labelSets = map[string]Labels{
	"en": {
		Lang:            "en",
		DateLabel:       "Date",
		TimeLabel:       "Time",
		LocationLabel:   "Location",
		LocationPending: "The venue address will be announced soon",
		OpenInMaps:      "Open in maps",
		DetailsHeading:  "Good to know",
		DressCode:       "Dress code",
		Gifts:           "Gifts",
		Menu:            "Menu",
		Notes:           "Notes",
		Wishes:          "Wishes",
		Programme:       "Programme",
		RSVPHeading:     "Will you join us?",
		RSVPIntro:       "Let us know if you can make it.",
		RSVPName:        "Your name",
		RSVPComment:     "Comment",
		RSVPSubmit:      "Send response",
		RSVPSuccess:     "Thank you! Your response has been recorded.",
		RSVPError:       "We could not send your response. Please try again.",
		ContactHeading:  "Contact",
		FooterNote:      "We look forward to seeing you",
		RSVPOptions: map[string]string{
			"attending":     "I will attend",
			"maybe":         "Maybe",
			"not_attending": "I can't make it",
		},
		DressCodes: map[string]string{
			"formal":       "Formal",
			"casual":       "Casual",
			"business":     "Business",
			"costume":      "Costume",
			"smart_casual": "Smart casual",
			"elegant":      "Elegant",
		},
	},
	"ru": {
		Lang:            "ru",
		DateLabel:       "Дата",
		TimeLabel:       "Время",
		LocationLabel:   "Место",
		LocationPending: "Адрес уточняется",
		OpenInMaps:      "Открыть на карте",
		DetailsHeading:  "Полезно знать",
		DressCode:       "Дресс-код",
		Gifts:           "Подарки",
		Menu:            "Меню",
		Notes:           "Примечания",
		Wishes:          "Пожелания",
		Programme:       "Программа",
		RSVPHeading:     "Подтвердите участие",
		RSVPIntro:       "Мы будем рады видеть вас на нашем событии!",
		RSVPName:        "Ваше имя",
		RSVPComment:     "Комментарий",
		RSVPSubmit:      "Отправить ответ",
		RSVPSuccess:     "Спасибо! Ваш ответ сохранен.",
		RSVPError:       "Не удалось отправить ответ. Попробуйте еще раз.",
		ContactHeading:  "Контакты",
		FooterNote:      "Ждем вас",
		RSVPOptions: map[string]string{
			"attending":     "Приду",
			"maybe":         "Возможно",
			"not_attending": "Не смогу",
		},
		DressCodes: map[string]string{
			"formal":       "Официальный",
			"casual":       "Повседневный",
			"business":     "Деловой",
			"costume":      "Костюмированный",
			"smart_casual": "Смарт-кэжуал",
			"elegant":      "Элегантный",
		},
	},
}

// DefaultRSVPOptions is the response order used when a request sets none.
var DefaultRSVPOptions = []string{"attending", "maybe", "not_attending"}

// LabelsFor returns the label set for a BCP 47 locale, defaulting to English.
func LabelsFor(locale string) Labels {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err == nil {
		base, _ := tag.Base()
		if labels, ok := labelSets[base.String()]; ok {
			return labels
		}
	}
	return labelSets["en"]
}

func (l Labels) dressCode(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	if label, ok := l.DressCodes[key]; ok {
		return label
	}
	return strings.TrimSpace(value)
}

func (l Labels) rsvpOption(value string) string {
	if label, ok := l.RSVPOptions[value]; ok {
		return label
	}
	return value
}
