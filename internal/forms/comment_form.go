package forms

import (
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/validators"
)

type CommentInput struct {
	Text string `form:"text" validate:"required"`
}

// CommentForm authors a comment on a post.
type CommentForm struct {
	CommentInput
	Errors validators.FieldErrors
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: validators.FieldErrors{}}
}

func (f *CommentForm) Validate(v StructValidator) (bool, error) {
	f.Errors = validators.FieldErrors{}
	f.Text = strings.TrimSpace(f.Text)
	if err := runValidator(v, &f.CommentInput, f.Errors); err != nil {
		return false, err
	}
	return len(f.Errors) == 0, nil
}

// Comment builds the entity for post, attributed to authorID.
func (f *CommentForm) Comment(post *models.Post, authorID uint) *models.Comment {
	return &models.Comment{PostID: post.ID, AuthorID: authorID, Text: f.Text}
}
