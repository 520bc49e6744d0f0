package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/model"
)

// Request body limits.
const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

// Idempotency headers.
const (
	HeaderIdempotencyKey    = "Idempotency-Key"
	HeaderIdempotencyReplay = "Idempotent-Replay"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("placing", func(fl validator.FieldLevel) bool {
		_, err := model.ParsePlacing(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := model.ParseCategory(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		_, err := model.ParseGrade(fl.Field().String())
		return err == nil
	})
}

type eventRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Category    string `json:"category" validate:"category"`
	StageType   string `json:"stageType" validate:"omitempty,max=16"`
	Description string `json:"description" validate:"max=2000"`
	Venue       string `json:"venue" validate:"max=200"`
	Date        string `json:"date" validate:"max=40"`
}

func (r eventRequest) input() service.EventInput {
	return service.EventInput{
		Name:        r.Name,
		Category:    r.Category,
		StageType:   r.StageType,
		Description: r.Description,
		Venue:       r.Venue,
		Date:        r.Date,
	}
}

type resultRequest struct {
	EventName   string `json:"eventName" validate:"required,max=120"`
	Placing     string `json:"placing" validate:"placing"`
	Category    string `json:"category" validate:"category"`
	Grade       string `json:"grade" validate:"grade"`
	StudentName string `json:"studentName" validate:"max=120"`
	ChestNumber string `json:"chestNumber" validate:"max=20"`
	Team        string `json:"team" validate:"max=80"`
}

func (r resultRequest) input() service.ResultInput {
	return service.ResultInput{
		EventName:   r.EventName,
		Placing:     r.Placing,
		Category:    r.Category,
		Grade:       r.Grade,
		StudentName: r.StudentName,
		ChestNumber: r.ChestNumber,
		Team:        r.Team,
	}
}

type registrationRequest struct {
	FullName       string   `json:"fullName" validate:"required,max=120"`
	CICNumber      string   `json:"cicNumber" validate:"max=40"`
	ChestNumber    string   `json:"chestNumber" validate:"max=20"`
	Team           string   `json:"team" validate:"max=80"`
	OnStageEvents  []string `json:"onStageEvents" validate:"max=50,dive,max=200"`
	OffStageEvents []string `json:"offStageEvents" validate:"max=50,dive,max=200"`
	GeneralEvents  []string `json:"generalEvents" validate:"max=50,dive,max=200"`
}

func (r registrationRequest) registration() model.Registration {
	return model.Registration{
		FullName:       r.FullName,
		CICNumber:      r.CICNumber,
		ChestNumber:    r.ChestNumber,
		Team:           r.Team,
		OnStageEvents:  r.OnStageEvents,
		OffStageEvents: r.OffStageEvents,
		GeneralEvents:  r.GeneralEvents,
	}
}

type announcementRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"required,max=5000"`
	Pinned bool   `json:"pinned"`
}

func (r announcementRequest) input() service.AnnouncementInput {
	return service.AnnouncementInput{Title: r.Title, Body: r.Body, Pinned: r.Pinned}
}

type settingsRequest struct {
	RegistrationOpen  *bool `json:"registrationOpen"`
	MaintenanceMode   *bool `json:"maintenanceMode"`
	ShowPointsHome    *bool `json:"showPointsHome"`
	ShowPointsResults *bool `json:"showPointsResults"`
}

func (r settingsRequest) patch() service.SettingsPatch {
	return service.SettingsPatch{
		RegistrationOpen:  r.RegistrationOpen,
		MaintenanceMode:   r.MaintenanceMode,
		ShowPointsHome:    r.ShowPointsHome,
		ShowPointsResults: r.ShowPointsResults,
	}
}

// decode reads one JSON object from the body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrTooLarge
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", ErrBadRequest)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequest, describe(err))
	}
	return nil
}

// describe turns validator output into one readable line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// multipartFile opens the "file" part of a multipart upload.
func multipartFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", ErrTooLarge
		}
		return nil, "", fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file part", ErrBadRequest)
	}
	return f, hdr.Filename, nil
}

type createdResponse struct {
	ID string `json:"id"`
}

// idempotentCreate runs create once per Idempotency-Key. A replayed key
// answers 200 with the original id; a key still in flight answers 409.
// Requests without the header always run create.
func idempotentCreate[T any](
	w http.ResponseWriter,
	r *http.Request,
	op string,
	keys IdempotencyDependencies,
	create func(ctx context.Context) (T, string, error),
) {
	ctx := r.Context()
	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	if key == "" || keys == nil {
		v, _, err := create(ctx)
		if err != nil {
			fail(w, r, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
		return
	}

	if id, seen := keys.Claim(ctx, key); seen {
		if id == "" {
			fail(w, r, op, ErrInProgress)
			return
		}
		w.Header().Set(HeaderIdempotencyReplay, "true")
		writeJSON(w, http.StatusOK, createdResponse{ID: id})
		return
	}

	v, id, err := create(ctx)
	if err != nil {
		keys.Release(ctx, key)
		fail(w, r, op, err)
		return
	}
	keys.Complete(ctx, key, id)
	writeJSON(w, http.StatusCreated, v)
}
