package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/sundayezeilo/shortlink/codegen"
	"github.com/sundayezeilo/shortlink/internal/errx"
)

const (
	MaxCodeLength = 64
)

// Service defines the link operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (Link, error)
	List(ctx context.Context) ([]Link, error)
	// Get returns the link without recording a click.
	Get(ctx context.Context, code string) (Link, error)
	// Resolve records a click and returns the updated link.
	Resolve(ctx context.Context, code string) (Link, error)
	Delete(ctx context.Context, code string) error
}

type service struct {
	repo          Repository
	codeGenerator codegen.Generator
	codeLength    int
	reserved      []string
	now           func() time.Time
	logger        *slog.Logger
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	CodeGenerator codegen.Generator
	CodeLength    int      // default: codegen.DefaultLength
	ReservedCodes []string // codes that would shadow other routes
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	gen := config.CodeGenerator
	if gen == nil {
		gen = codegen.NewBase36()
	}

	length := config.CodeLength
	if length <= 0 || length > MaxCodeLength {
		length = codegen.DefaultLength
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		repo:          repo,
		codeGenerator: gen,
		codeLength:    length,
		reserved:      config.ReservedCodes,
		now:           now,
		logger:        logger,
	}
}

// Create issues a link for req.TargetURL.
//
// A custom code that already exists is rejected with Conflict. A generated
// code that exists is regenerated exactly once and the second code is
// inserted without another check; if it collides too, the store's unique
// constraint rejects it and Create reports an Internal error.
func (s *service) Create(ctx context.Context, req CreateLinkRequest) (Link, error) {
	const op = "links.service.Create"

	if req.TargetURL == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("targetUrl is required"))
	}

	custom := req.CustomCode != ""

	var code string
	if custom {
		if err := s.validateCode(req.CustomCode); err != nil {
			return Link{}, errx.E(op, errx.Invalid, err)
		}

		taken, err := s.codeTaken(ctx, req.CustomCode)
		if err != nil {
			return Link{}, errx.Wrap(op, err)
		}
		if taken {
			return Link{}, errx.Errorf(op, errx.Conflict, "code %q is already in use", req.CustomCode)
		}
		code = req.CustomCode
	} else {
		generated, err := s.issueCode(ctx)
		if err != nil {
			return Link{}, errx.Wrap(op, err)
		}
		code = generated
	}

	created, err := s.repo.Create(ctx, Link{
		Code:      code,
		TargetURL: req.TargetURL,
		CreatedAt: s.clock(),
	})
	if err != nil {
		if errx.Is(err, errx.Conflict) {
			if custom {
				return Link{}, errx.Errorf(op, errx.Conflict, "code %q is already in use", code)
			}
			return Link{}, errx.E(op, errx.Internal,
				fmt.Errorf("generated code %q collided after one regeneration: %w", code, err))
		}
		return Link{}, errx.Wrap(op, err)
	}
	return created, nil
}

// issueCode generates a code and, if it is already taken or reserved,
// generates one more. The second code is only checked against the reserved
// segments, not the store.
func (s *service) issueCode(ctx context.Context) (string, error) {
	const op = "links.service.issueCode"

	code, err := s.codeGenerator.Generate(s.codeLength)
	if err != nil {
		return "", errx.E(op, errx.Internal, err)
	}

	taken := s.isReserved(code)
	if !taken {
		taken, err = s.codeTaken(ctx, code)
		if err != nil {
			return "", errx.Wrap(op, err)
		}
	}
	if !taken {
		return code, nil
	}

	s.logger.WarnContext(ctx, "generated code collided, regenerating once", "code", code)

	code, err = s.codeGenerator.Generate(s.codeLength)
	if err != nil {
		return "", errx.E(op, errx.Internal, err)
	}
	if s.isReserved(code) {
		return "", errx.Errorf(op, errx.Internal, "generated code %q is reserved after one regeneration", code)
	}
	return code, nil
}

func (s *service) isReserved(code string) bool {
	return slices.Contains(s.reserved, code)
}

func (s *service) codeTaken(ctx context.Context, code string) (bool, error) {
	_, err := s.repo.GetByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errx.Is(err, errx.NotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *service) List(ctx context.Context) ([]Link, error) {
	const op = "links.service.List"

	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, errx.Wrap(op, err)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, code string) (Link, error) {
	const op = "links.service.Get"

	if code == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Link{}, errx.Wrap(op, err)
	}
	return link, nil
}

func (s *service) Resolve(ctx context.Context, code string) (Link, error) {
	const op = "links.service.Resolve"

	if code == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	link, err := s.repo.RecordClick(ctx, code, s.clock())
	if err != nil {
		return Link{}, errx.Wrap(op, err)
	}
	return link, nil
}

func (s *service) Delete(ctx context.Context, code string) error {
	const op = "links.service.Delete"

	if code == "" {
		return errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	if err := s.repo.Delete(ctx, code); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

// clock returns the current time at the precision both stores keep.
func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// validateCode checks that a custom code survives as a single path segment.
func (s *service) validateCode(code string) error {
	if len(code) > MaxCodeLength {
		return fmt.Errorf("customCode too long (maximum %d characters)", MaxCodeLength)
	}
	if strings.ContainsAny(code, "/?#%\\") {
		return errors.New(`customCode cannot contain "/", "?", "#", "%" or "\"`)
	}
	if strings.ContainsFunc(code, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) {
		return errors.New("customCode cannot contain whitespace or control characters")
	}
	if code == "." || code == ".." {
		return errors.New("customCode cannot be a dot segment")
	}
	if s.isReserved(code) {
		return fmt.Errorf("customCode %q is reserved", code)
	}
	return nil
}
