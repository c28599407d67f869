package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports which fields of a record broke their rules.
type ValidationError struct {
	fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.fields[name])
	}
	return strings.Join(msgs, " ")
}

// Fields returns field name to message pairs.
func (e *ValidationError) Fields() map[string]string {
	return e.fields
}

// messages maps "Struct.Field.tag" to the text shown to users.
var messages = map[string]string{
	"userRules.Username.required": "The username is required.",
	"userRules.Username.max":      "The username cannot be more than 255 characters.",
	"userRules.Password.required": "The password is required.",
	"userRules.Password.min":      "The password must be a minimum length of 10 characters.",
	"Snippet.Title.required":      "The title is required.",
	"Snippet.Title.max":           "Title cannot be more than 20 characters.",
	"Snippet.Content.required":    "The content is required.",
	"Snippet.Author.required":     "The author is required.",
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		key := fmt.Sprintf("%s.%s", fe.StructNamespace(), fe.Tag())
		msg, ok := messages[key]
		if !ok {
			msg = fmt.Sprintf("The %s field failed the %s rule.", strings.ToLower(fe.Field()), fe.Tag())
		}
		out.fields[strings.ToLower(fe.Field())] = msg
	}
	return out
}
