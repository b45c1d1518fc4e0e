package assembler

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-invites/pkg/interfaces"
)

const (
	routeGroup = "public"
	routeSite  = "site"
	routeRSVP  = "rsvp"

	// DefaultSitePath is the public path of a generated invitation.
	DefaultSitePath = "/s/:slug"
	// DefaultRSVPPath is the submission path the RSVP widget posts to.
	DefaultRSVPPath = "/sites/:site_id/rsvp"
)

var ErrRouteParam = errors.New("assembler: route parameter required")

// RouteConfig configures public URL generation.
type RouteConfig struct {
	BaseURL  string
	SitePath string
	RSVPPath string
}

// Routes resolves site and RSVP URLs through a go-urlkit route manager.
type Routes struct {
	manager *urlkit.RouteManager
}

var _ interfaces.RouteResolver = (*Routes)(nil)

// NewRoutes builds the route manager for the public group.
func NewRoutes(cfg RouteConfig) *Routes {
	sitePath := strings.TrimSpace(cfg.SitePath)
	if sitePath == "" {
		sitePath = DefaultSitePath
	}
	rsvpPath := strings.TrimSpace(cfg.RSVPPath)
	if rsvpPath == "" {
		rsvpPath = DefaultRSVPPath
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    routeGroup,
				BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
				Paths: map[string]string{
					routeSite: sitePath,
					routeRSVP: rsvpPath,
				},
			},
		},
	})
	return &Routes{manager: manager}
}

// SiteURL returns the public URL for slug.
func (r *Routes) SiteURL(slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", fmt.Errorf("%w: slug", ErrRouteParam)
	}
	return r.build(routeSite, map[string]any{"slug": slug})
}

// RSVPEndpoint returns the submission endpoint bound to siteID.
func (r *Routes) RSVPEndpoint(siteID string) (string, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return "", fmt.Errorf("%w: site_id", ErrRouteParam)
	}
	return r.build(routeRSVP, map[string]any{"site_id": siteID})
}

func (r *Routes) build(route string, params map[string]any) (string, error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("assembler: route manager not configured")
	}
	group, err := lookupGroup(r.manager, routeGroup)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	return builder.Build()
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("assembler: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("assembler: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("assembler: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("assembler: route group %q not found", name)
	}
	return group, nil
}
