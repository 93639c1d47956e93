package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebpage_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipe":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><h1>Soup</h1></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	w := NewWebpage()

	body, err := w.Fetch(context.Background(), srv.URL+"/recipe")
	require.NoError(t, err)
	assert.Contains(t, body, "<h1>Soup</h1>")

	_, err = w.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestWebpage_RejectsBadURLs(t *testing.T) {
	w := NewWebpage()

	for _, u := range []string{"", "ftp://example.com/x", "not a url", "/relative/path", "javascript:alert(1)"} {
		_, err := w.Fetch(context.Background(), u)
		assert.ErrorIs(t, err, ErrFetch, u)
	}
}

func TestWebpage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewWebpage().Fetch(context.Background(), addr)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/pasta?page=2",
		NormalizeURL("https://EXAMPLE.com/pasta?utm_source=x&page=2&fbclid=abc#comments"),
	)
}

func TestParseVideoID(t *testing.T) {
	valid := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":        "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ&t=42s":    "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=share":              "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":          "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ": "dQw4w9WgXcQ",
	}

	for in, want := range valid {
		id, ok := ParseVideoID(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, id, in)
	}

	for _, in := range []string{
		"https://www.youtube.com/",
		"https://www.youtube.com/watch?v=short",
		"https://vimeo.com/123456789",
		"https://youtu.be/",
		"dQw4w9WgXcQ",
	} {
		_, ok := ParseVideoID(in)
		assert.False(t, ok, in)
	}
}

const longDescription = "Ingredients: 2 eggs, 100g flour, 200ml milk. Whisk, rest, then fry thin pancakes."

func videoServer(t *testing.T, withCaptions bool, description string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			captions := ""
			if withCaptions {
				captions = fmt.Sprintf(`,"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
					{"baseUrl":"%[1]s/timedtext?lang=de","languageCode":"de"},
					{"baseUrl":"%[1]s/timedtext?lang=en&kind=asr","languageCode":"en","kind":"asr"},
					{"baseUrl":"%[1]s/timedtext?lang=en","languageCode":"en"}
				]}}`, srv.URL)
			}

			fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"%s","title":"Crepes at home","shortDescription":%q}%s};var meta = {};</script></html>`,
				r.URL.Query().Get("v"), description, captions)

		case "/timedtext":
			if r.URL.Query().Get("lang") != "en" || r.URL.Query().Get("kind") != "" {
				http.Error(w, "wrong track", http.StatusTeapot)
				return
			}
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="2">Today we&amp;#39;re making crepes.</text>
<text start="2" dur="3">Whisk two eggs with one hundred grams of flour.</text>
<text start="5" dur="3">Add the milk slowly and rest the batter.</text>
</transcript>`)

		default:
			http.NotFound(w, r)
		}
	}))

	return srv
}

func TestVideo_FetchPrefersManualEnglishCaptions(t *testing.T) {
	srv := videoServer(t, true, "short")
	defer srv.Close()

	v := NewVideo(WithWatchBase(srv.URL))

	content, err := v.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", content.VideoID)
	assert.Equal(t, "Crepes at home", content.Title)
	assert.True(t, content.FromCaptions)
	assert.True(t, strings.HasPrefix(content.Transcript, "Today we're making crepes."))
	assert.Contains(t, content.Transcript, "rest the batter.")
}

func TestVideo_FallsBackToDescription(t *testing.T) {
	srv := videoServer(t, false, longDescription)
	defer srv.Close()

	content, err := NewVideo(WithWatchBase(srv.URL)).Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.False(t, content.FromCaptions)
	assert.Equal(t, longDescription, content.Transcript)
}

func TestVideo_TooShort(t *testing.T) {
	srv := videoServer(t, false, "yum")
	defer srv.Close()

	_, err := NewVideo(WithWatchBase(srv.URL)).Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestVideo_NoVideoID(t *testing.T) {
	_, err := NewVideo().Fetch(context.Background(), "https://example.com/not-a-video")
	assert.ErrorIs(t, err, ErrFetch)
}

func dataURI(mediaType string, payload []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestPhotos(t *testing.T) {
	jpeg := dataURI("image/jpeg", []byte{0xff, 0xd8, 0xff, 0xe0})

	images, err := Photos([]string{jpeg, jpeg, dataURI("image/png", []byte("png")), jpeg, jpeg, jpeg})
	require.NoError(t, err)
	assert.Len(t, images, MaxPhotos)
	assert.Equal(t, "image/png", images[2].MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), images[2].Data)
}

func TestPhotos_Rejects(t *testing.T) {
	cases := [][]string{
		nil,
		{"https://example.com/photo.jpg"},
		{dataURI("application/pdf", []byte("%PDF"))},
		{"data:image/jpeg;base64,@@@not-base64@@@"},
		{"data:image/png,rawbytes"},
	}

	for _, c := range cases {
		_, err := Photos(c)
		assert.ErrorIs(t, err, ErrFetch, c)
	}
}

func TestPhotos_OnlyFirstFourValidated(t *testing.T) {
	jpeg := dataURI("image/jpg", []byte("jpeg"))

	images, err := Photos([]string{jpeg, jpeg, jpeg, jpeg, "garbage"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", images[0].MediaType)
}
