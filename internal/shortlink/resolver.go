package shortlink

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/rs/zerolog/log"
)

type Outcome int

const (
	NotFound Outcome = iota
	Expired
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Expired:
		return "expired"
	case Redirect:
		return "redirect"
	default:
		return "not_found"
	}
}

type Resolution struct {
	Outcome Outcome
	Target  string
	Link    *internal.ShortLink
}

type ResolveStore interface {
	GetByCode(ctx context.Context, code string) (*internal.ShortLink, error)
	IncrementClicks(ctx context.Context, id string) (bool, error)
}

var schemePattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)

// Resolver turns short codes into redirect targets and counts the click.
type Resolver struct {
	links    ResolveStore
	protocol string
	domain   string
	now      func() time.Time
}

func NewResolver(links ResolveStore, protocol, domain string) *Resolver {
	return &Resolver{
		links:    links,
		protocol: protocol,
		domain:   domain,
		now:      time.Now,
	}
}

// Resolve looks the code up and, unless it is missing or expired, increments
// the click counter of that same record. Expired links are not counted.
func (r *Resolver) Resolve(ctx context.Context, code string) (Resolution, error) {
	if !codePattern.MatchString(code) {
		return Resolution{Outcome: NotFound}, nil
	}

	link, err := r.links.GetByCode(ctx, code)
	if errors.Is(err, internal.ErrLinkNotFound) {
		return Resolution{Outcome: NotFound}, nil
	}
	if err != nil {
		return Resolution{}, err
	}

	if link.Expired(r.now()) {
		log.Debug().Str("short_code", code).Msg("link expired")
		return Resolution{Outcome: Expired, Link: link}, nil
	}

	// keyed by id: a delete racing this lookup turns the increment into a no-op
	ok, err := r.links.IncrementClicks(ctx, link.ID)
	if err != nil {
		return Resolution{}, err
	}
	if !ok {
		log.Debug().Str("short_code", code).Msg("link deleted during resolution")
		return Resolution{Outcome: NotFound}, nil
	}
	link.Clicks++

	return Resolution{Outcome: Redirect, Target: r.Target(link.OriginalURL), Link: link}, nil
}

// Target returns originalURL verbatim when it has a scheme, otherwise an
// absolute URL on the default protocol and domain.
func (r *Resolver) Target(originalURL string) string {
	if schemePattern.MatchString(originalURL) {
		return originalURL
	}
	path := originalURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.protocol + "://" + r.domain + path
}
