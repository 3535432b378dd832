package utils

import (
	"errors"
	"farmstay-service/internal/pkg/constvars"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	validate      *validator.Validate
	rePhoneNumber = regexp.MustCompile(constvars.RegexPhoneNumberGeneral)
	reSKU         = regexp.MustCompile(constvars.RegexSKU)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("item_type", validateItemType)
	validate.RegisterValidation("sku", validateSKU)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidateUrlParamID(param string) error {
	if param == "" {
		return errors.New("parameter is missing from url path")
	}

	_, err := uuid.Parse(param)
	return err
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	return rePhoneNumber.MatchString(fl.Field().String())
}

func validateItemType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "rest_house", "horse_training", "plant":
		return true
	}
	return false
}

func validateSKU(fl validator.FieldLevel) bool {
	return reSKU.MatchString(fl.Field().String())
}
