package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/flickguess/assets"
	"github.com/robalobadob/flickguess/internal/config"
	"github.com/robalobadob/flickguess/internal/daily"
	"github.com/robalobadob/flickguess/internal/game"
	"github.com/robalobadob/flickguess/internal/movies"
	"github.com/robalobadob/flickguess/internal/round"
	"github.com/robalobadob/flickguess/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

var inception = movies.Movie{Title: "Inception", Year: "2010", PosterURL: "http://posters/inception.png", Plot: "Dreams."}

type fixedSource struct{ m movies.Movie }

func (f fixedSource) RandomMovie(context.Context) (movies.Movie, error) { return f.m, nil }

// pngFetcher serves the same small poster for every URL.
type pngFetcher struct{ data []byte }

func (p pngFetcher) Fetch(context.Context, string) ([]byte, error) { return p.data, nil }

func testPoster(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 150))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "app.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	schema, err := fs.ReadFile(assets.Migrations(), "001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

type harness struct {
	t       *testing.T
	srv     *Server
	catalog *movies.Catalog
	cfg     config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	raw, err := assets.Catalog()
	require.NoError(t, err)
	cat, err := movies.ParseCatalog(raw)
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:    "test_secret",
		CookieName:   "flick_token",
		ClientOrigin: "http://localhost:5173",
		DailySalt:    "test_salt",
		CanvasWidth:  100,
	}
	srv := New(Deps{
		Config:  cfg,
		Store:   store.NewMemoryStore(),
		DB:      testDB(t),
		Movies:  fixedSource{inception},
		Catalog: cat,
		Posters: pngFetcher{testPoster(t)},
	})
	return &harness{t: t, srv: srv, catalog: cat, cfg: cfg}
}

func (h *harness) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// newRound starts a classic round and waits for its poster.
func (h *harness) newRound(cookies ...*http.Cookie) round.View {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/rounds/new", nil, cookies...)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decode[round.View](h.t, rec)
	h.waitLoaded(v.ID)
	return v
}

func (h *harness) waitLoaded(id string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		rec := h.do(http.MethodGet, "/rounds/"+id, nil)
		return rec.Code == http.StatusOK && decode[round.View](h.t, rec).Loaded
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDiagnostics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/debug/movies", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, h.catalog.Len(), decode[map[string]int](t, rec)["catalog"])

	rec = h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")

	rec = h.do(http.MethodOptions, "/rounds/new", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRound_GuessFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/rounds/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotNil(t, cookieNamed(rec, anonCookieName), "guests get an anonymous cookie")
	v := decode[round.View](t, rec)
	assert.Equal(t, game.StatusPlaying, v.Status)
	assert.Equal(t, 30, v.Reveal)
	assert.Equal(t, 3, v.MaxAttempts)
	assert.Nil(t, v.Movie)
	h.waitLoaded(v.ID)

	path := "/rounds/" + v.ID + "/guess"

	rec = h.do(http.MethodPost, path, map[string]string{"guess": "in"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"guess_too_short"}`, strings.TrimSpace(rec.Body.String()))

	rec = h.do(http.MethodPost, path, map[string]string{"guess": "Inferno"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[guessRes](t, rec)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 45, res.Reveal)
	assert.Equal(t, map[int]string{0: "i", 1: "n", 3: "e"}, res.Correct)
	assert.Equal(t, "Dreams.", res.Round.Hint)
	assert.Nil(t, res.Round.Movie)

	rec = h.do(http.MethodPost, path, map[string]string{"guess": "  INCEPTION "})
	res = decode[guessRes](t, rec)
	assert.True(t, res.Won)
	assert.Equal(t, 100, res.Reveal)
	require.NotNil(t, res.Round.Movie)
	assert.Equal(t, "Inception", res.Round.Movie.Title)
	assert.Equal(t, 100, res.Round.Scratched)

	rec = h.do(http.MethodPost, path, map[string]string{"guess": "whatever"})
	res = decode[guessRes](t, rec)
	assert.True(t, res.Ignored)
	assert.Equal(t, game.StatusWon, res.Status)
}

func TestRound_ThreeMissesLose(t *testing.T) {
	h := newHarness(t)
	v := h.newRound()
	path := "/rounds/" + v.ID + "/guess"

	for _, g := range []string{"Titanic", "Avatar", "Jaws"} {
		require.Equal(t, http.StatusOK, h.do(http.MethodPost, path, map[string]string{"guess": g}).Code)
	}
	got := decode[round.View](t, h.do(http.MethodGet, "/rounds/"+v.ID, nil))
	assert.Equal(t, game.StatusLost, got.Status)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, 100, got.Reveal)
	assert.Equal(t, []string{"i", "n", "c", "e", "p", "t", "i", "o", "n"}, got.Mask)
	assert.Equal(t, "Oh no! Better luck next time!", got.StatusText)
}

func TestRound_ScratchAndFrames(t *testing.T) {
	h := newHarness(t)
	v := h.newRound()

	rec := h.do(http.MethodPost, "/rounds/"+v.ID+"/scratch", map[string]float64{"x": 50, "y": 75})
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[map[string]any](t, rec)
	assert.Greater(t, d["erasedPixels"], 0.0)
	assert.Less(t, d["scratchRemaining"], 20.0)

	// the client cannot widen the brush
	rec = h.do(http.MethodPost, "/rounds/"+v.ID+"/scratch", map[string]float64{"x": 50, "y": 75, "radius": 5000})
	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[map[string]any](t, rec)
	assert.Zero(t, d["erasedPixels"], "same spot, same fixed radius: nothing new to erase")
	assert.Less(t, d["scratchedPercentage"], 60.0)

	rec = h.do(http.MethodPost, "/rounds/"+v.ID+"/scratch", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, p := range []string{"/frame.png", "/pixelated.png"} {
		rec = h.do(http.MethodGet, "/rounds/"+v.ID+p, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		img, err := png.Decode(rec.Body)
		require.NoError(t, err, p)
		assert.Equal(t, image.Rect(0, 0, 100, 150), img.Bounds())
	}
}

func TestRound_ResetAndMissing(t *testing.T) {
	h := newHarness(t)
	v := h.newRound()
	h.do(http.MethodPost, "/rounds/"+v.ID+"/guess", map[string]string{"guess": "Titanic"})

	rec := h.do(http.MethodPost, "/rounds/"+v.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[round.View](t, rec)
	assert.Equal(t, v.ID, got.ID)
	assert.Greater(t, got.Generation, v.Generation)
	assert.Zero(t, got.Attempts)
	assert.Empty(t, got.Guesses)

	var status string
	require.NoError(t, h.srv.db.QueryRow(`SELECT status FROM rounds WHERE id=? AND generation=?`, v.ID, v.Generation).Scan(&status))
	assert.Equal(t, "abandoned", status)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/rounds/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/rounds/missing/guess", map[string]string{"guess": "abc"}).Code)
}

func TestAuth_SignupStatsHistory(t *testing.T) {
	h := newHarness(t)

	// a guest round, claimed on signup
	rec := h.do(http.MethodPost, "/rounds/new", nil)
	anon := cookieNamed(rec, anonCookieName)
	require.NotNil(t, anon)

	creds := map[string]string{"username": "cinephile", "password": "popcorn123"}
	rec = h.do(http.MethodPost, "/auth/signup", creds, anon)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tok := cookieNamed(rec, "flick_token")
	require.NotNil(t, tok)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/auth/signup", creds).Code)
	assert.Equal(t, http.StatusUnauthorized,
		h.do(http.MethodPost, "/auth/login", map[string]string{"username": "cinephile", "password": "wrong-pass"}).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/auth/me", nil).Code)

	me := decode[authUser](t, h.do(http.MethodGet, "/auth/me", nil, tok))
	assert.Equal(t, "cinephile", me.Username)

	v := h.newRound(tok)
	h.do(http.MethodPost, "/rounds/"+v.ID+"/guess", map[string]string{"guess": "inception"})

	stats := decode[map[string]any](t, h.do(http.MethodGet, "/stats/me", nil, tok))
	assert.EqualValues(t, 1, stats["gamesPlayed"])
	assert.EqualValues(t, 1, stats["wins"])
	assert.EqualValues(t, 1, stats["streak"])

	rows := decode[[]roundRow](t, h.do(http.MethodGet, "/rounds/mine", nil, tok))
	require.Len(t, rows, 2)
	var titles []string
	for _, r := range rows {
		titles = append(titles, r.Title)
	}
	assert.Contains(t, titles, "Inception")
	assert.Contains(t, titles, "", "unfinished rounds hide the title")

	rec = h.do(http.MethodPost, "/auth/logout", nil, tok)
	cleared := cookieNamed(rec, "flick_token")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestDaily_OncePerDay(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/daily/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	anon := cookieNamed(rec, anonCookieName)
	first := decode[newRes](t, rec)
	require.NotNil(t, first.Round)
	assert.Equal(t, round.ModeDaily, first.Round.Mode)
	h.waitLoaded(first.RoundID)

	again := decode[newRes](t, h.do(http.MethodPost, "/daily/new", nil, anon))
	assert.Equal(t, first.RoundID, again.RoundID, "resumes the same round")

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/rounds/"+first.RoundID+"/reset", nil).Code)

	idx := daily.MovieIndex(time.Now(), h.cfg.DailySalt, h.catalog.Len())
	title := h.catalog.At(idx).Title
	h.do(http.MethodPost, "/rounds/"+first.RoundID+"/guess", map[string]string{"guess": title})

	done := decode[newRes](t, h.do(http.MethodPost, "/daily/new", nil, anon))
	assert.True(t, done.Played)
	assert.Empty(t, done.RoundID)

	lb := decode[lbRes](t, h.do(http.MethodGet, "/daily/leaderboard", nil))
	require.Len(t, lb.Top, 1)
	assert.Equal(t, anon.Value, lb.Top[0].UserID)
	assert.Zero(t, lb.Top[0].Attempts)
}

func TestDaily_SurvivesEviction(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/daily/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	anon := cookieNamed(rec, anonCookieName)
	first := decode[newRes](t, rec)
	h.waitLoaded(first.RoundID)

	for _, g := range []string{"Zzzzzz", "Qqqqqq"} {
		require.Equal(t, http.StatusOK,
			h.do(http.MethodPost, "/rounds/"+first.RoundID+"/guess", map[string]string{"guess": g}, anon).Code)
	}

	var stored string
	require.NoError(t, h.srv.db.QueryRow(`SELECT guesses FROM rounds WHERE id=?`, first.RoundID).Scan(&stored))
	assert.JSONEq(t, `["Zzzzzz","Qqqqqq"]`, stored)

	require.Equal(t, 1, h.srv.store.Sweep(time.Now().Add(3*time.Hour), 2*time.Hour))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/rounds/"+first.RoundID, nil).Code)

	rec = h.do(http.MethodPost, "/daily/new", nil, anon)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	again := decode[newRes](t, rec)
	assert.False(t, again.Played)
	assert.Equal(t, first.RoundID, again.RoundID, "the evicted round comes back, not a fresh one")
	require.NotNil(t, again.Round)
	assert.Equal(t, 2, again.Round.Attempts)
	assert.Equal(t, []string{"Zzzzzz", "Qqqqqq"}, again.Round.Guesses)
	assert.Equal(t, 60, again.Round.Reveal)

	// one more miss ends the day
	rec = h.do(http.MethodPost, "/rounds/"+first.RoundID+"/guess", map[string]string{"guess": "Xxxxxx"}, anon)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.StatusLost, decode[guessRes](t, rec).Status)
	assert.True(t, decode[newRes](t, h.do(http.MethodPost, "/daily/new", nil, anon)).Played)
}

func TestScratchWebsocket(t *testing.T) {
	h := newHarness(t)
	v := h.newRound()

	ts := httptest.NewServer(h.srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rounds/" + v.ID + "/scratch/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]float64{"x": 50, "y": 75}))
	var ev map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "scratch", ev["type"])
	assert.Greater(t, ev["erasedPixels"], 0.0)
	assert.NotEmpty(t, ev["statusText"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "error", ev["type"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.newRound()

	rec := h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flickguess_rounds_started_total{mode="classic"} 1`)

	// the load counter is bumped just after the poster lands
	assert.Eventually(t, func() bool {
		return strings.Contains(h.do(http.MethodGet, "/metrics", nil).Body.String(),
			`flickguess_poster_loads_total{result="ok"} 1`)
	}, 2*time.Second, 10*time.Millisecond)
}
