// Package sources implements the YouTube web surface the engine scrapes.
//
// Split by responsibility:
//
//	youtube.go           — URL builders and the CSS selectors expected to drift
//	youtube_discovery.go — keyword search for channels, progressive loading, result parsing
//	youtube_channel.go   — per-channel about/videos extraction
package sources

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	baseURL = "https://www.youtube.com"
	// channels-only search filter param
	channelSearchFilter = "EgIQAg%3D%3D"
)

// All markup-coupled selectors live here so layout drift stays a one-file fix.
const (
	selChannelResult = "ytd-channel-renderer"
	selChannelTitle  = "yt-formatted-string#text"
	selChannelLink   = "a#main-link"
	selChannelSubs   = "yt-formatted-string#subscribers"
	selChannelDesc   = "yt-formatted-string#description"

	selAboutMeta = "ytd-about-channel-renderer, ytd-channel-about-metadata-renderer"

	selVideoResult = "ytd-grid-video-renderer, ytd-rich-item-renderer"
	selVideoTitle  = "#video-title"
	selVideoLink   = "a#video-title-link, a#thumbnail"
	selVideoMeta   = "#metadata-line span"
)

var videoIDRE = regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`)

// searchURL builds a channels-only search for the keyword, pinned to the
// configured region and language.
func searchURL(keyword, region, language string) string {
	q := url.Values{}
	q.Set("search_query", keyword+" channel")
	q.Set("gl", region)
	q.Set("hl", language)
	return baseURL + "/results?" + q.Encode() + "&sp=" + channelSearchFilter
}

// channelPath maps an id to its base URL path. Search results link channels
// either by handle ("@name") or by canonical id ("UC...").
func channelPath(id string) string {
	if strings.HasPrefix(id, "@") {
		return baseURL + "/" + id
	}
	return baseURL + "/channel/" + id
}

func aboutURL(id string) string  { return channelPath(id) + "/about" }
func videosURL(id string) string { return channelPath(id) + "/videos" }

// channelIDFromHref extracts the id from a result link href such as
// "/channel/UCabc" or "/@handle".
func channelIDFromHref(href string) string {
	href = strings.TrimSuffix(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return ""
}

// videoIDFromHref extracts the 11-char video id from a watch or shorts href.
func videoIDFromHref(href string) string {
	if m := videoIDRE.FindStringSubmatch(href); len(m) == 2 {
		return m[1]
	}
	if i := strings.Index(href, "/shorts/"); i >= 0 {
		id := href[i+len("/shorts/"):]
		if j := strings.IndexAny(id, "?&/"); j >= 0 {
			id = id[:j]
		}
		return id
	}
	return ""
}
