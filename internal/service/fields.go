package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gatherly/gatherly-server/internal/blob"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/id"
	"github.com/gatherly/gatherly-server/internal/media/images"
	"github.com/gatherly/gatherly-server/internal/store"
	"github.com/gatherly/gatherly-server/internal/util"
	"github.com/gatherly/gatherly-server/internal/validation"
)

// FieldInput is one submitted form field: a text value, or a file for the
// image and logo fields.
type FieldInput struct {
	Value string
	File  *Upload
}

// Upload is the file part of a form submission.
type Upload struct {
	ContentType string
	Body        io.Reader
}

// ImageAnalyzer computes blur hashes for uploaded images.
type ImageAnalyzer interface {
	BlurHash(ctx context.Context, url string) (string, error)
}

// imageBlurhashField is written alongside every image upload.
const imageBlurhashField = "imageBlurhash"

// fieldRule is the normalization and validation for a plain field.
type fieldRule struct {
	tag       string
	normalize func(string) string
}

var communityFieldRules = map[string]fieldRule{
	domain.CommunityFieldName:        {tag: "max=32"},
	domain.CommunityFieldDescription: {},
	domain.CommunityFieldSubdomain:   {tag: "required,max=32", normalize: util.NormalizeSubdomain},
	domain.CommunityFieldFont:        {tag: "oneof=font-cal font-lora font-work"},
	domain.CommunityFieldMessage404:  {tag: "max=240"},
}

var eventFieldRules = map[string]fieldRule{
	domain.EventFieldTitle:       {},
	domain.EventFieldDescription: {},
	domain.EventFieldContent:     {},
	domain.EventFieldSlug:        {tag: "required,max=128", normalize: util.NormalizeSlug},
}

var userFieldRules = map[string]fieldRule{
	domain.UserFieldName:     {tag: "max=64"},
	domain.UserFieldUsername: {tag: "max=39"},
	domain.UserFieldEmail:    {tag: "omitempty,email"},
	domain.UserFieldImage:    {tag: "omitempty,url"},
}

// customDomainRule applies to custom domains that already passed the syntax check.
const customDomainRule = "max=64"

// plainField normalizes and validates value for key against rules.
func plainField(v *validation.Validator, rules map[string]fieldRule, key, value string) (store.Fields, error) {
	rule, ok := rules[key]
	if !ok {
		return nil, unknownField(key)
	}
	if rule.normalize != nil {
		value = rule.normalize(value)
	}
	if err := v.Field(key, value, rule.tag); err != nil {
		return nil, err
	}
	return store.Fields{key: value}, nil
}

func unknownField(key string) error {
	return domainerrors.ValidationWithDetails("Unknown field "+key, map[string]string{key: "unknown field"})
}

// persistError converts a store failure into a domain error. taken builds
// the conflict error for the field that collided.
func persistError(err error, taken func(field string) *domainerrors.Error) error {
	if uv, ok := store.AsUniqueViolation(err); ok {
		return taken(uv.Field)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound("Record not found")
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error())
	default:
		return domainerrors.Persistence(err)
	}
}

// Uploader stores file fields in blob storage.
type Uploader struct {
	blob     blob.Store
	analyzer ImageAnalyzer
	logger   *slog.Logger
}

// NewUploader creates an uploader. A nil blob store means uploads are not
// configured and every file field fails with ServiceUnavailable.
func NewUploader(store blob.Store, analyzer ImageAnalyzer, logger *slog.Logger) *Uploader {
	return &Uploader{
		blob:     store,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Configured reports whether file fields are accepted.
func (u *Uploader) Configured() bool {
	return u != nil && u.blob != nil
}

// Fields uploads in.File and returns the columns to write for key: the
// public URL, plus the blur hash when key is an image field.
func (u *Uploader) Fields(ctx context.Context, key string, in FieldInput) (store.Fields, error) {
	if !u.Configured() {
		return nil, domainerrors.ServiceUnavailable("Missing BLOB_READ_WRITE_TOKEN token.")
	}
	if in.File == nil || in.File.Body == nil {
		return nil, domainerrors.ValidationWithDetails(key+" requires a file", map[string]string{key: "file is required"})
	}

	name, err := id.Filename(blob.ExtensionFromContentType(in.File.ContentType))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate filename")
	}

	url, err := u.blob.Put(ctx, name, in.File.ContentType, in.File.Body)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}

	fields := store.Fields{key: url}
	if key == domain.CommunityFieldImage {
		fields[imageBlurhashField] = u.blurHash(ctx, url)
	}
	return fields, nil
}

// blurHash analyzes the uploaded image, falling back to the placeholder hash.
func (u *Uploader) blurHash(ctx context.Context, url string) string {
	if u.analyzer == nil {
		return images.Placeholder()
	}
	hash, err := u.analyzer.BlurHash(ctx, url)
	if err != nil {
		u.logger.Warn("blur hash failed, using placeholder", "url", url, "error", err)
		return images.Placeholder()
	}
	return hash
}
