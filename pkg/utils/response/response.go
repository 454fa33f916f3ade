// Package response defines the reply body shared by every assistant endpoint.
//
// Every reply, successful or not, carries a human readable "response"
// string. Upload replies may add knowledge_base and image_path.
package response

import (
	"github.com/kart-io/naughty-assistant/pkg/errors"
)

// Response is the unified API response structure.
type Response struct {
	// Response is the text shown to the user.
	Response string `json:"response"`

	// KnowledgeBase is the knowledge store confirmation for text uploads.
	KnowledgeBase string `json:"knowledge_base,omitempty"`

	// ImagePath is the stored path of an uploaded image.
	ImagePath string `json:"image_path,omitempty"`
}

// Text creates a plain reply.
func Text(s string) *Response {
	return &Response{Response: s}
}

// Err converts an Errno into a reply and its HTTP status.
func Err(e *errors.Errno) (*Response, int) {
	if e == nil {
		return Text(""), errors.OK.HTTPStatus()
	}
	return &Response{Response: e.Message("en")}, e.HTTPStatus()
}

// FromError converts any error into a reply and HTTP status. Errors without
// an Errno in their chain become ErrInternal carrying err's text.
func FromError(err error) (*Response, int) {
	var e *errors.Errno
	if errors.As(err, &e) {
		return Err(e)
	}
	return Err(errors.ErrInternal.WithMessage(err.Error()))
}
