package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrSlugTaken is reported by stores when the slug unique constraint rejects a write.
var ErrSlugTaken = errors.New("site: slug already taken")

// GeneratedSite is the persisted result of a completed task.
type GeneratedSite struct {
	bun.BaseModel `bun:"table:invitation_sites,alias:s"`

	ID              uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	TaskID          uuid.UUID         `bun:"task_id,notnull,type:uuid" json:"task_id"`
	Slug            string            `bun:"slug,notnull,unique" json:"slug"`
	Title           string            `bun:"title,notnull" json:"title"`
	MetaDescription string            `bun:"meta_description" json:"meta_description"`
	EventCategory   EventCategory     `bun:"event_category,notnull" json:"event_category"`
	Scheme          string            `bun:"scheme" json:"scheme"`
	Theme           ThemeProfile      `bun:"theme,type:jsonb" json:"theme"`
	Content         ParsedContent     `bun:"content,type:jsonb" json:"content"`
	Request         GenerationRequest `bun:"request,type:jsonb" json:"request"`
	Geocode         *GeocodeResult    `bun:"geocode,type:jsonb" json:"geocode,omitempty"`
	Document        string            `bun:"document,notnull" json:"document"`
	Fingerprint     string            `bun:"fingerprint" json:"fingerprint"`
	IsPublished     bool              `bun:"is_published,notnull,default:true" json:"is_published"`
	CreatedAt       time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// RSVPOption is a selectable guest response.
type RSVPOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RSVPWidgetConfig binds the response widget to its site.
type RSVPWidgetConfig struct {
	SiteID   uuid.UUID    `json:"siteId"`
	Options  []RSVPOption `json:"options"`
	Endpoint string       `json:"endpoint"`
}
