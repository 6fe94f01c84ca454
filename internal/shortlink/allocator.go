package shortlink

import (
	"context"
	"fmt"
	"regexp"

	"github.com/abdusco/shortlink/internal"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// maxAllocationAttempts bounds collision retries for generated codes.
const maxAllocationAttempts = 10

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// reservedCodes shadow fixed routes and can never be resolved.
var reservedCodes = map[string]bool{
	"api":    true,
	"health": true,
}

type CodeLookup interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// Allocator picks short codes. It only checks availability; the insert that
// follows is what actually claims the code.
type Allocator struct {
	links    CodeLookup
	length   int
	generate func(length int) string
}

func NewAllocator(links CodeLookup, length int) *Allocator {
	return &Allocator{
		links:    links,
		length:   length,
		generate: randomCode,
	}
}

// Allocate returns requested if it is free, or a fresh random code when
// requested is empty.
func (a *Allocator) Allocate(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		if err := ValidateCode(requested); err != nil {
			return "", err
		}

		taken, err := a.links.ExistsByCode(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", internal.ErrCodeTaken
		}
		return requested, nil
	}

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		code := a.generate(a.length)
		taken, err := a.links.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		log.Debug().Str("short_code", code).Int("attempt", attempt).Msg("generated short code collided")
	}

	return "", fmt.Errorf("%w after %d attempts", internal.ErrAllocationExhausted, maxAllocationAttempts)
}

// ValidateCode checks that a caller-supplied code is a usable single path segment.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return internal.NewValidationError("Short code may only contain letters, digits, '-' and '_' (max 64)")
	}
	if reservedCodes[code] {
		return internal.NewValidationError("Short code is reserved")
	}
	return nil
}

func randomCode(length int) string {
	return lo.RandomString(length, lo.AlphanumericCharset)
}
