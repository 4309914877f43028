package nostd

import (
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

// CustomValidator plugs go-playground/validator into echo with translated
// error messages.
type CustomValidator struct {
	Validator *validator.Validate
	trans     ut.Translator
}

// TransInit registers the english translations. Must be called before the
// validator is installed on the echo instance.
func (cv *CustomValidator) TransInit() error {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	trans, ok := uni.GetTranslator("en")
	if !ok {
		trans = uni.GetFallback()
	}
	cv.trans = trans

	return entranslations.RegisterDefaultTranslations(cv.Validator, trans)
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.Validator.Struct(i)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 && cv.trans != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs[0].Translate(cv.trans))
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
