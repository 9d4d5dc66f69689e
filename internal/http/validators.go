package http

import (
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxUserNameLen = 64

var registerOnce sync.Once

// registerValidators agrega las validaciones propias al motor de binding de gin.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("user_name", validUserName)
	})
}

// validUserName acepta nombres no vacios, sin caracteres de control y de largo acotado.
// El nombre forma parte de la etiqueta user_<nombre> del store.
func validUserName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" || len([]rune(name)) > maxUserNameLen {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
