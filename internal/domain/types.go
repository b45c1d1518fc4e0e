package domain

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EventCategory classifies the occasion an invitation is generated for.
type EventCategory string

const (
	EventWedding      EventCategory = "wedding"
	EventBirthday     EventCategory = "birthday"
	EventAnniversary  EventCategory = "anniversary"
	EventGraduation   EventCategory = "graduation"
	EventCorporate    EventCategory = "corporate"
	EventHousewarming EventCategory = "housewarming"
	EventBabyShower   EventCategory = "baby_shower"
	EventEngagement   EventCategory = "engagement"
	EventRetirement   EventCategory = "retirement"
	EventHoliday      EventCategory = "holiday"
	EventOther        EventCategory = "other"
)

var knownCategories = map[EventCategory]struct{}{
	EventWedding: {}, EventBirthday: {}, EventAnniversary: {}, EventGraduation: {},
	EventCorporate: {}, EventHousewarming: {}, EventBabyShower: {}, EventEngagement: {},
	EventRetirement: {}, EventHoliday: {}, EventOther: {},
}

// Normalize lower-cases the category and maps unknown or empty values to other.
func (c EventCategory) Normalize() EventCategory {
	value := EventCategory(strings.ToLower(strings.TrimSpace(string(c))))
	value = EventCategory(strings.ReplaceAll(string(value), "-", "_"))
	if _, ok := knownCategories[value]; ok {
		return value
	}
	return EventOther
}

// IsKnown reports whether the raw value names a supported category.
func (c EventCategory) IsKnown() bool {
	value := EventCategory(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(c))), "-", "_"))
	_, ok := knownCategories[value]
	return ok
}

// DressCodeTypes lists the accepted dress code identifiers.
var DressCodeTypes = []string{"formal", "casual", "business", "costume", "smart_casual", "elegant"}

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// ContactInfo describes the host reachable by guests.
type ContactInfo struct {
	Name  string `json:"name,omitempty" yaml:"name"`
	Phone string `json:"phone,omitempty" yaml:"phone"`
	Email string `json:"email,omitempty" yaml:"email"`
}

// IsZero reports whether no contact field is set.
func (c ContactInfo) IsZero() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Phone) == "" && strings.TrimSpace(c.Email) == ""
}

// DressCode captures the requested attire.
type DressCode struct {
	Type        string `json:"type,omitempty" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// IsZero reports whether no dress code was provided.
func (d DressCode) IsZero() bool {
	return strings.TrimSpace(d.Type) == "" && strings.TrimSpace(d.Description) == ""
}

// TimelineEntry is one item of the event programme.
type TimelineEntry struct {
	Time        string `json:"time,omitempty" yaml:"time"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// RSVPSettings controls the response widget.
type RSVPSettings struct {
	Disabled bool     `json:"disabled,omitempty" yaml:"disabled"`
	Options  []string `json:"options,omitempty" yaml:"options"`
}

// EventDetails carries the structured content supplied by the requester.
type EventDetails struct {
	Title        string          `json:"title" yaml:"title"`
	Description  string          `json:"description,omitempty" yaml:"description"`
	Date         string          `json:"date,omitempty" yaml:"date"`
	Time         string          `json:"time,omitempty" yaml:"time"`
	City         string          `json:"city,omitempty" yaml:"city"`
	Venue        string          `json:"venue,omitempty" yaml:"venue"`
	Address      string          `json:"address,omitempty" yaml:"address"`
	Contact      ContactInfo     `json:"contact,omitempty" yaml:"contact"`
	DressCode    DressCode       `json:"dress_code,omitempty" yaml:"dress_code"`
	GiftInfo     string          `json:"gift_info,omitempty" yaml:"gift_info"`
	Menu         string          `json:"menu,omitempty" yaml:"menu"`
	SpecialNotes string          `json:"special_notes,omitempty" yaml:"special_notes"`
	Wishes       string          `json:"wishes,omitempty" yaml:"wishes"`
	Timeline     []TimelineEntry `json:"timeline,omitempty" yaml:"timeline"`
	RSVP         RSVPSettings    `json:"rsvp,omitempty" yaml:"rsvp"`
}

// EventDate parses Date. ok is false when the date is absent or malformed.
func (d EventDetails) EventDate() (time.Time, bool) {
	raw := strings.TrimSpace(d.Date)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Location joins city and address for lookups and display.
func (d EventDetails) Location() string {
	parts := make([]string, 0, 2)
	if city := strings.TrimSpace(d.City); city != "" {
		parts = append(parts, city)
	}
	if address := strings.TrimSpace(d.Address); address != "" {
		parts = append(parts, address)
	}
	return strings.Join(parts, ", ")
}

// GenerationRequest is the immutable input of a generation task.
type GenerationRequest struct {
	EventCategory   EventCategory `json:"event_category" yaml:"event_category"`
	ThemeLabel      string        `json:"theme_label,omitempty" yaml:"theme_label"`
	ColorPreference string        `json:"color_preference,omitempty" yaml:"color_preference"`
	StylePreference string        `json:"style_preference,omitempty" yaml:"style_preference"`
	TargetAudience  string        `json:"target_audience,omitempty" yaml:"target_audience"`
	Locale          string        `json:"locale,omitempty" yaml:"locale"`
	Details         EventDetails  `json:"details" yaml:"details"`
}

var (
	clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Validate checks the structural requirements of a request.
func (r GenerationRequest) Validate() error {
	details := r.Details
	if err := validation.ValidateStruct(&details,
		validation.Field(&details.Title, validation.By(requiredText("invites.request.title_required", "title is required"))),
		validation.Field(&details.Time, validation.When(strings.TrimSpace(details.Time) != "",
			validation.Match(clockPattern).ErrorObject(validation.NewError("invites.request.time_invalid", "time must use HH:MM")))),
	); err != nil {
		return validation.Errors{"details": err}
	}

	contact := details.Contact
	if err := validation.ValidateStruct(&contact,
		validation.Field(&contact.Email, validation.When(strings.TrimSpace(contact.Email) != "",
			validation.Match(emailPattern).ErrorObject(validation.NewError("invites.request.email_invalid", "contact email is invalid")))),
	); err != nil {
		return validation.Errors{"contact": err}
	}

	dress := details.DressCode
	if err := validation.ValidateStruct(&dress,
		validation.Field(&dress.Type, validation.When(strings.TrimSpace(dress.Type) != "",
			validation.In(anySlice(DressCodeTypes)...).ErrorObject(validation.NewError("invites.request.dress_code_invalid", "dress code type is not supported")))),
	); err != nil {
		return validation.Errors{"dress_code": err}
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.EventCategory, validation.By(func(value any) error {
			category, _ := value.(EventCategory)
			if strings.TrimSpace(string(category)) == "" || category.IsKnown() {
				return nil
			}
			return validation.NewError("invites.request.event_category_invalid", "event category is not supported")
		})),
	)
}

// Normalized returns a copy with trimmed free text and a resolved category.
func (r GenerationRequest) Normalized() GenerationRequest {
	out := r
	out.EventCategory = r.EventCategory.Normalize()
	out.ThemeLabel = strings.TrimSpace(r.ThemeLabel)
	out.ColorPreference = strings.TrimSpace(r.ColorPreference)
	out.StylePreference = strings.TrimSpace(r.StylePreference)
	out.TargetAudience = strings.TrimSpace(r.TargetAudience)
	out.Locale = strings.TrimSpace(r.Locale)
	if out.Locale == "" {
		out.Locale = "en"
	}
	out.Details.Title = strings.TrimSpace(r.Details.Title)
	out.Details.Description = strings.TrimSpace(r.Details.Description)
	if len(r.Details.Timeline) > 0 {
		out.Details.Timeline = append([]TimelineEntry(nil), r.Details.Timeline...)
	}
	if len(r.Details.RSVP.Options) > 0 {
		out.Details.RSVP.Options = append([]string(nil), r.Details.RSVP.Options...)
	}
	return out
}

func requiredText(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}
