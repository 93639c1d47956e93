package fetcher

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"codeberg.org/mise/server/internal/recipe"
	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type Video struct {
	opts options
}

// creates a YouTube transcript fetcher
func NewVideo(opts ...Option) *Video {
	return &Video{opts: buildOptions(opts)}
}

// extracts the 11-character video id from watch, short-link, embed and
// shorts URLs
func ParseVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string

	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "v" || segments[0] == "live"):
			id = segments[1]
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}

	return id, true
}

// resolves the video, then its captions, falling back to the description
func (v *Video) Fetch(ctx context.Context, rawURL string) (*VideoContent, error) {
	id, ok := ParseVideoID(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: no video id in %q", ErrFetch, rawURL)
	}

	page, err := get(ctx, v.opts, v.opts.watchBase+"/watch?v="+id+"&hl=en")
	if err != nil {
		return nil, err
	}

	player, err := playerResponse(page)
	if err != nil {
		return nil, err
	}

	content := &VideoContent{
		VideoID:     id,
		Title:       player.Get("videoDetails.title").String(),
		Description: strings.TrimSpace(player.Get("videoDetails.shortDescription").String()),
	}

	if track := pickCaptionTrack(player); track != "" {
		if transcript, err := v.captions(ctx, track); err == nil && len(transcript) >= MinTranscriptLength {
			content.Transcript = transcript
			content.FromCaptions = true
		}
	}

	if !content.FromCaptions {
		content.Transcript = content.Description
	}

	if len(content.Transcript) < MinTranscriptLength {
		return nil, fmt.Errorf("%w: video %s has no usable transcript or description", ErrFetch, id)
	}

	return content, nil
}

// pulls the ytInitialPlayerResponse object out of the watch page
func playerResponse(page string) (gjson.Result, error) {
	idx := strings.Index(page, "ytInitialPlayerResponse")
	if idx < 0 {
		return gjson.Result{}, fmt.Errorf("%w: player response not found", ErrFetch)
	}

	obj, err := recipe.ExtractJSONObject(page[idx:])
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: player response unreadable", ErrFetch)
	}

	player := gjson.Parse(obj)
	if status := player.Get("playabilityStatus.status").String(); status != "" && status != "OK" {
		return gjson.Result{}, fmt.Errorf("%w: video unavailable (%s)", ErrFetch, status)
	}

	return player, nil
}

// prefers manual English captions, then auto-generated English, then any
func pickCaptionTrack(player gjson.Result) string {
	tracks := player.Get("captions.playerCaptionsTracklistRenderer.captionTracks").Array()
	if len(tracks) == 0 {
		return ""
	}

	var autoEnglish string

	for _, t := range tracks {
		if !strings.HasPrefix(t.Get("languageCode").String(), "en") {
			continue
		}

		if t.Get("kind").String() != "asr" {
			return t.Get("baseUrl").String()
		}

		if autoEnglish == "" {
			autoEnglish = t.Get("baseUrl").String()
		}
	}

	if autoEnglish != "" {
		return autoEnglish
	}

	return tracks[0].Get("baseUrl").String()
}

// downloads a timedtext track and joins its cues into plain text
func (v *Video) captions(ctx context.Context, trackURL string) (string, error) {
	body, err := get(ctx, v.opts, trackURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: caption track unreadable: %v", ErrFetch, err)
	}

	var parts []string
	doc.Find("text").Each(func(_ int, s *goquery.Selection) {
		// cue text is entity-encoded twice
		line := strings.TrimSpace(html.UnescapeString(s.Text()))
		if line != "" {
			parts = append(parts, strings.ReplaceAll(line, "\n", " "))
		}
	})

	return strings.Join(parts, " "), nil
}
