package validators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("trip_date", validateTripDate)
	validate.RegisterValidation("trip_time", validateTripTime)
	validate.RegisterValidation("rating_value", validateRatingValue)
	validate.RegisterValidation("license_plate", validateLicensePlate)
}

// RegisterGinValidators installs the custom tags on gin's binding
// engine so they work inside `binding:` struct tags. Called once at
// startup.
func RegisterGinValidators() {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	engine.RegisterValidation("object_id", validateObjectID)
	engine.RegisterValidation("phone_number", validatePhoneNumber)
	engine.RegisterValidation("trip_date", validateTripDate)
	engine.RegisterValidation("trip_time", validateTripTime)
	engine.RegisterValidation("rating_value", validateRatingValue)
	engine.RegisterValidation("license_plate", validateLicensePlate)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

// FormatBindingErrors flattens gin binding failures into a field map
// for the validation error envelope. Non-validator errors (malformed
// JSON and the like) collapse to a single "body" entry.
func FormatBindingErrors(err error) map[string]string {
	fields := make(map[string]string)

	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			fields[strings.ToLower(verr.Field())] = getErrorMessage(verr)
		}
		return fields
	}

	fields["body"] = err.Error()
	return fields
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "phone_number":
		return "Invalid phone number format"
	case "trip_date":
		return "Date must be in YYYY-MM-DD format"
	case "trip_time":
		return "Time must be in HH:MM format"
	case "rating_value":
		return "Rating must be between 1 and 5"
	case "license_plate":
		return "Invalid license plate format"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

// Peruvian mobile numbers are nine digits starting with 9, with an
// optional +51 prefix.
func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}

	phoneRegex := regexp.MustCompile(`^(\+51)?9\d{8}$`)
	return phoneRegex.MatchString(strings.ReplaceAll(phone, " ", ""))
}

func validateTripDate(fl validator.FieldLevel) bool {
	date := fl.Field().String()
	if date == "" {
		return true
	}

	dateRegex := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	return dateRegex.MatchString(date)
}

func validateTripTime(fl validator.FieldLevel) bool {
	timeStr := fl.Field().String()
	if timeStr == "" {
		return true
	}

	timeRegex := regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
	return timeRegex.MatchString(timeStr)
}

func validateRatingValue(fl validator.FieldLevel) bool {
	rating := fl.Field().Int()
	return rating >= 1 && rating <= 5
}

// Peruvian plates are three alphanumerics, a dash, then three digits.
func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if plate == "" {
		return true
	}

	plateRegex := regexp.MustCompile(`^[A-Z0-9]{3}-\d{3}$`)
	return plateRegex.MatchString(strings.ToUpper(plate))
}

func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func SanitizeInput(input string) string {
	htmlRegex := regexp.MustCompile(`<[^>]*>`)
	cleaned := htmlRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
