package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

func withParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "petId", id.String())
	got, err := ParseUUIDParam(req, "petId")
	if err != nil || got != id {
		t.Fatalf("expected %s got %s (%v)", id, got, err)
	}

	bad := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "petId", "nope")
	if _, err := ParseUUIDParam(bad, "petId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500&sort=popular", nil)
	p, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 3 || p.Limit != 100 || p.Sort != "popular" {
		t.Fatalf("unexpected params %+v", p)
	}

	defaults, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if defaults.Page != 1 || defaults.Limit != 20 {
		t.Fatalf("unexpected defaults %+v", defaults)
	}

	if _, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=0", nil)); err == nil {
		t.Fatal("expected page=0 to be rejected")
	}
}

func TestParseQueryEnum(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?category=cat&size=huge", nil)
	cat, err := ParseQueryEnum(req, "category", enums.ParsePetCategory)
	if err != nil || cat == nil || *cat != enums.PetCategoryCat {
		t.Fatalf("expected cat got %v (%v)", cat, err)
	}
	if _, err := ParseQueryEnum(req, "size", enums.ParsePetSize); err == nil {
		t.Fatal("expected invalid size to fail")
	}
	missing, err := ParseQueryEnum(req, "gender", enums.ParsePetGender)
	if err != nil || missing != nil {
		t.Fatalf("absent value should be nil, got %v (%v)", missing, err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	var body struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field map, got %T", pkgerrors.As(err).Details())
	}
	if details["name"] != "is required" || details["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestSearchTermKeepsRunesWhole(t *testing.T) {
	q := strings.Repeat("a", 99) + "é"
	req := httptest.NewRequest(http.MethodGet, "/?q="+url.QueryEscape(q), nil)

	got := SearchTerm(req)
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf-8, got %q", got)
	}
	if got != strings.Repeat("a", 99) {
		t.Fatalf("expected the partial rune to be dropped, got %q", got)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "trims", in: "  golden retriever ", max: 80, want: "golden retriever"},
		{name: "drops control characters", in: "lab\x00rador\n", max: 80, want: "labrador"},
		{name: "drops invalid bytes", in: "shi\xffba", max: 80, want: "shiba"},
		{name: "cuts on rune boundary", in: "ñandú", max: 5, want: "ñand"},
		{name: "no limit", in: "mixed breed", max: 0, want: "mixed breed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.in, tc.max); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestDecodeJSONBodyReportsNestedPaths(t *testing.T) {
	type settings struct {
		MaxMembersLimit int `json:"maxMembersLimit" validate:"min=0,max=100000"`
	}
	type groupBody struct {
		Name     string   `json:"name" validate:"required,min=3"`
		Tags     []string `json:"tags" validate:"max=2"`
		Images   []string `json:"images" validate:"dive,url"`
		Settings settings `json:"settings"`
	}
	var body groupBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"name":"ab","tags":["a","b","c"],"images":["nope"],"settings":{"maxMembersLimit":-1}}`))
	err := DecodeJSONBody(req, &body)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field map, got %v", err)
	}
	want := map[string]string{
		"name":                     "must be at least 3 characters",
		"tags":                     "must have at most 2 items",
		"images[0]":                "must be a valid URL",
		"settings.maxMembersLimit": "must be at least 0",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Fatalf("field %s: expected %q got %q (all: %v)", field, msg, details[field], details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownAndEmpty(t *testing.T) {
	var body struct {
		Name string `json:"name"`
	}
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nickname":"x"}`)), &body)
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	if details["nickname"] != "is not allowed" {
		t.Fatalf("expected unknown field detail, got %v", err)
	}

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.As(err).Message() != "request body is required" {
		t.Fatalf("expected empty body error, got %v", err)
	}
}
