package forms

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/validators"
	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"
)

// MaxImageSize caps uploaded post images.
const MaxImageSize = 10 << 20

// GroupFinder resolves the optional group choice.
type GroupFinder interface {
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
}

// PostInput holds the raw fields of the post authoring form.
type PostInput struct {
	Group      string                `form:"group"`
	Text       string                `form:"text" validate:"required"`
	Image      *multipart.FileHeader `form:"-" validate:"-"` // bound from the "image" file part
	ImageClear string                `form:"image-clear"`
}

// UploadedImage is an image that passed content validation.
type UploadedImage struct {
	Data []byte
	Ext  string
}

// PostForm creates a post or edits Instance in place.
type PostForm struct {
	PostInput
	Groups   []models.Group
	Instance *models.Post
	Errors   validators.FieldErrors

	groupID *uint
	upload  *UploadedImage
}

// NewPostForm returns a form prefilled from instance, which may be nil.
func NewPostForm(groups []models.Group, instance *models.Post) *PostForm {
	f := &PostForm{Groups: groups, Instance: instance, Errors: validators.FieldErrors{}}
	if instance != nil {
		f.Text = instance.Text
		if instance.GroupID != nil {
			f.Group = strconv.FormatUint(uint64(*instance.GroupID), 10)
		}
	}
	return f
}

// Validate checks every field and records what is wrong. The error is reserved for store failures.
func (f *PostForm) Validate(ctx context.Context, v StructValidator, groups GroupFinder) (bool, error) {
	f.Errors = validators.FieldErrors{}
	f.groupID, f.upload = nil, nil
	f.Text = strings.TrimSpace(f.Text)

	if err := runValidator(v, &f.PostInput, f.Errors); err != nil {
		return false, err
	}

	if raw := strings.TrimSpace(f.Group); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			f.Errors.Add("group", MsgInvalidChoice)
		} else if group, err := groups.GetGroupByID(ctx, uint(id)); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return false, err
			}
			f.Errors.Add("group", MsgInvalidChoice)
		} else {
			f.groupID = &group.ID
		}
	}

	switch {
	case f.Image != nil && f.ImageClear != "":
		f.Errors.Add("image", MsgImageConflict)
	case f.Image != nil:
		upload, msg := readImage(f.Image)
		if msg != "" {
			f.Errors.Add("image", msg)
		}
		f.upload = upload
	}

	return len(f.Errors) == 0, nil
}

// Upload is the validated image, or nil when none was submitted.
func (f *PostForm) Upload() *UploadedImage {
	return f.upload
}

// Apply copies the cleaned fields onto post. The image path is set by the caller after storing Upload.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.groupID
	if f.ImageClear != "" && f.upload == nil {
		post.Image = ""
	}
}

// IsSelected reports whether the group option id should render as selected.
func (f *PostForm) IsSelected(id uint) bool {
	return f.Group == strconv.FormatUint(uint64(id), 10)
}

func readImage(fh *multipart.FileHeader) (*UploadedImage, string) {
	if fh.Size > MaxImageSize {
		return nil, MsgImageTooLarge
	}
	file, err := fh.Open()
	if err != nil {
		return nil, MsgInvalidImage
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, MsgInvalidImage
	}
	if len(data) == 0 {
		return nil, MsgEmptyFile
	}
	if len(data) > MaxImageSize {
		return nil, MsgImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, MsgInvalidImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, MsgInvalidImage
	}
	return &UploadedImage{Data: data, Ext: mt.Extension()}, ""
}
