package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Submission é o formulário como chegou. Campos além dos obrigatórios
// (company, role, ...) passam adiante sem alteração.
type Submission map[string]any

const (
	fieldEmail     = "email"
	fieldFirstName = "firstName"
	fieldLastName  = "lastName"
)

var requiredFields = []string{fieldEmail, fieldFirstName, fieldLastName}

// Email devolve o email enviado, ou "" se ausente ou não-string.
func (s Submission) Email() string {
	v, _ := s[fieldEmail].(string)
	return v
}

// Metadata é o que o gateway acrescenta antes de encaminhar.
type Metadata struct {
	UserAgent string
	IPAddress string
	At        time.Time
}

// isoMillis é o formato de Date.toISOString: UTC com milissegundos.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// WithMetadata devolve uma cópia com userAgent, ipAddress e timestamp.
// Os metadados sobrescrevem chaves homônimas enviadas pelo cliente.
func (s Submission) WithMetadata(m Metadata) map[string]any {
	out := make(map[string]any, len(s)+3)
	for k, v := range s {
		out[k] = v
	}
	out["userAgent"] = m.UserAgent
	out["ipAddress"] = m.IPAddress
	out["timestamp"] = m.At.UTC().Format(isoMillis)
	return out
}

// DecodeSubmission lê exatamente um objeto JSON.
// Números ficam como json.Number para serem reenviados sem perda.
func DecodeSubmission(r io.Reader) (Submission, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var sub Submission
	if err := dec.Decode(&sub); err != nil {
		if tooLarge(err) {
			return nil, fmt.Errorf("%w: %v", ErrBodyTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	// o limite pode estourar depois do objeto (espaços ou lixo no fim); o
	// scanner acusa o lixo antes, então o resto do corpo é drenado para ver o limite.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if _, rest := io.Copy(io.Discard, r); tooLarge(err) || tooLarge(rest) {
			return nil, fmt.Errorf("%w: %v", ErrBodyTooLarge, err)
		}
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedRequest)
	}
	if sub == nil {
		sub = Submission{}
	}
	return sub, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// ValidationError lista os campos obrigatórios ausentes, vazios ou não-string.
type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return "invalid submission: " + strings.Join(parts, ", ")
}

// requiredProjection só existe para o validator; os valores vêm do map.
type requiredProjection struct {
	Email     string `json:"email" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Validate falha com *ValidationError se email, firstName ou lastName estiver
// ausente, não for string ou for vazio. Não altera a submissão.
func Validate(sub Submission) error {
	var errs []FieldError
	strs := make(map[string]string, len(requiredFields))

	for _, f := range requiredFields {
		raw, ok := sub[f]
		if !ok || raw == nil {
			errs = append(errs, FieldError{Field: f, Reason: "is required"})
			continue
		}
		s, ok := raw.(string)
		if !ok {
			errs = append(errs, FieldError{Field: f, Reason: "must be a string"})
			continue
		}
		strs[f] = s
	}

	proj := requiredProjection{
		Email:     strs[fieldEmail],
		FirstName: strs[fieldFirstName],
		LastName:  strs[fieldLastName],
	}
	if err := validate.Struct(proj); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if _, typed := strs[fe.Field()]; !typed {
				// já reportado acima (ausente ou de outro tipo)
				continue
			}
			errs = append(errs, FieldError{Field: fe.Field(), Reason: "must not be empty"})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
