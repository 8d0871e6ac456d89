package controllers

import (
	"net/http"

	"github.com/angelmondragon/pawfinderz-backend/api/middleware"
	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/api/validators"
	"github.com/angelmondragon/pawfinderz-backend/internal/pets"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

// PetsList serves the public catalog. Status defaults to available.
func PetsList(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parsePetFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parsePetFilters(r *http.Request) (pets.ListFilters, error) {
	var f pets.ListFilters
	var err error
	q := r.URL.Query()
	if f.Category, err = validators.ParseQueryEnum(r, "category", enums.ParsePetCategory); err != nil {
		return f, err
	}
	if f.Size, err = validators.ParseQueryEnum(r, "size", enums.ParsePetSize); err != nil {
		return f, err
	}
	if f.Gender, err = validators.ParseQueryEnum(r, "gender", enums.ParsePetGender); err != nil {
		return f, err
	}
	if f.Status, err = validators.ParseQueryEnum(r, "status", enums.ParsePetStatus); err != nil {
		return f, err
	}
	if f.OriginType, err = validators.ParseQueryEnum(r, "origin_type", enums.ParseOriginType); err != nil {
		return f, err
	}
	if f.AgeMin, err = validators.ParseQueryOptionalInt(r, "age_min", 0, 50); err != nil {
		return f, err
	}
	if f.AgeMax, err = validators.ParseQueryOptionalInt(r, "age_max", 0, 50); err != nil {
		return f, err
	}
	if f.FeeMax, err = validators.ParseQueryDecimal(r, "fee_max"); err != nil {
		return f, err
	}
	f.Breed = validators.SanitizeString(q.Get("breed"), 80)
	f.Location = validators.SanitizeString(q.Get("location"), 120)
	f.Query = validators.SearchTerm(r)
	return f, nil
}

// PetsGet returns one listing and counts a debounced view.
func PetsGet(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pet, err := svc.Get(r.Context(), petID, middleware.ClientIP(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pet)
	}
}

func PetsCreate(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body pets.CreatePetInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pet, err := svc.Create(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Pet created", pet)
	}
}

func PetsUpdate(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pets.UpdatePetInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pet, err := svc.Update(r.Context(), actor, petID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Pet updated", pet)
	}
}

func PetsDelete(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, petID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Pet deleted", nil)
	}
}

func PetsAdopt(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pet, err := svc.Adopt(r.Context(), actor, petID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Pet adopted", pet)
	}
}

func PetsLike(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ToggleLike(r.Context(), actor, petID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg := "Pet unliked"
		if result.Liked {
			msg = "Pet liked"
		}
		responses.WriteMessage(w, http.StatusOK, msg, result)
	}
}

func PetsReport(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pets")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pets.ReportInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
	
		report, err := svc.Report(r.Context(), actor, petID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Report submitted", report)
	}
}
