package vote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	voteErr   error
	optOutErr error
	menuErr   error
	lastMenu  Menu
	snapshot  Snapshot
}

func (s *stubService) Vote(_ context.Context, person, restaurant string, checked bool) (VoteReceipt, error) {
	if s.voteErr != nil {
		return VoteReceipt{}, s.voteErr
	}
	return VoteReceipt{Person: person, Restaurant: restaurant, Checked: checked}, nil
}

func (s *stubService) OptOut(_ context.Context, person string, checked bool) (OptOutReceipt, error) {
	if s.optOutErr != nil {
		return OptOutReceipt{}, s.optOutErr
	}
	return OptOutReceipt{Person: person, OptOut: checked}, nil
}

func (s *stubService) Menu(_ context.Context, person string, menu Menu) (MenuReceipt, error) {
	if s.menuErr != nil {
		return MenuReceipt{}, s.menuErr
	}
	s.lastMenu = menu
	return MenuReceipt{Person: person, Menu: menu}, nil
}

func (s *stubService) Snapshot() Snapshot {
	return s.snapshot
}

type stubRoster struct {
	names []string
	err   error
}

func (s *stubRoster) ActiveNames(context.Context) ([]string, error) {
	return s.names, s.err
}

func newTestServer(t *testing.T, service *stubService, apiKey string) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, service, &stubRoster{names: []string{"김철수", "이영희"}}, apiKey)
	r := chi.NewRouter()
	h.MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandlerRejectsBadKey(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "secret")

	status, body := getJSON(t, srv.URL+"/?action=state&key=wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["ok"])

	status, _ = getJSON(t, srv.URL+"/?action=state&key=secret")
	assert.Equal(t, http.StatusOK, status)
}

func TestHandlerEmptyKeyDisablesAuth(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "")
	status, _ := getJSON(t, srv.URL+"/?action=state")
	assert.Equal(t, http.StatusOK, status)
}

func TestHandlerStateIsDefaultAction(t *testing.T) {
	service := &stubService{snapshot: Snapshot{Date: "2025-06-16", Phase: PhaseVoteActive}}
	srv := newTestServer(t, service, "")

	status, body := getJSON(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "2025-06-16", body["date"])
	assert.Equal(t, string(PhaseVoteActive), body["phase"])
}

func TestHandlerPeople(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "")
	status, body := getJSON(t, srv.URL+"/?action=people")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"김철수", "이영희"}, body["people"])
}

func TestHandlerVote(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "")
	status, body := getJSON(t, srv.URL+"/?action=vote&person=김철수&restaurant=대수식당&checked=true")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "김철수", body["person"])
	assert.Equal(t, "대수식당", body["restaurant"])
	assert.Equal(t, true, body["checked"])
}

func TestHandlerVoteMissingParams(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "")
	status, body := getJSON(t, srv.URL+"/?action=vote&person=김철수")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
}

func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"vote limit", ErrVoteLimit, http.StatusBadRequest},
		{"unknown restaurant", ErrUnknownRestaurant, http.StatusBadRequest},
		{"past cutoff", ErrPastCutoff, http.StatusForbidden},
		{"unknown person", ErrUnknownPerson, http.StatusNotFound},
		{"lock timeout", ErrLockTimeout, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubService{voteErr: tc.err}, "")
			status, body := getJSON(t, srv.URL+"/?action=vote&person=김철수&restaurant=대수식당&checked=true")
			assert.Equal(t, tc.want, status)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, float64(tc.want), body["code"])
		})
	}
}

func TestHandlerMenuPriceCoercion(t *testing.T) {
	service := &stubService{}
	srv := newTestServer(t, service, "")

	status, body := getJSON(t, srv.URL+"/?action=menu&person=김철수&menuName=김치찜&price=9000")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(9000), body["price"])
	require.NotNil(t, service.lastMenu.Price)
	assert.Equal(t, int64(9000), *service.lastMenu.Price)

	// Empty price means no price, not zero.
	status, body = getJSON(t, srv.URL+"/?action=menu&person=김철수&menuName=김치찜&price=")
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["price"])
	assert.Nil(t, service.lastMenu.Price)

	status, _ = getJSON(t, srv.URL+"/?action=menu&person=김철수&menuName=김치찜&price=구천원")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandlerMenuOptedOut(t *testing.T) {
	srv := newTestServer(t, &stubService{menuErr: ErrOptedOut}, "")
	status, body := getJSON(t, srv.URL+"/?action=menu&person=김철수&menuName=김치찜")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, body["ok"])
}

func TestHandlerAliasRoutes(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "secret")

	status, body := getJSON(t, srv.URL+"/vote?key=secret&person=김철수&restaurant=대수식당&checked=true")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	status, _ = getJSON(t, srv.URL+"/state?key=wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandlerUnknownAction(t *testing.T) {
	srv := newTestServer(t, &stubService{}, "")
	status, body := getJSON(t, srv.URL+"/?action=teleport")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
}
