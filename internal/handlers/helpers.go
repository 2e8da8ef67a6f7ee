package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/internal/validator"
	"github.com/luneclub/lune/backend/pkg/response"
)

// bindError reports a failed ShouldBind as a validation error.
func bindError(c *gin.Context, err error) {
	response.Error(c, response.NewValidation(validator.Message(err)))
}

func parseID(c *gin.Context, param, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, response.NewValidation("invalid "+label+" id"))
		return 0, false
	}
	return uint(id), true
}

// formFile opens an optional multipart part. The returned closer is never nil.
func formFile(c *gin.Context, field string) (*services.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*services.FileUpload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   f,
	}, func() { f.Close() }, nil
}

// splitCSV accepts both repeated query keys and comma separated values.
func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
