// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"codeberg.org/yomu/mangadexkit/config"
	"codeberg.org/yomu/mangadexkit/core/tokenmanager"
)

// Credentials identify a personal API client and the account it acts for.
type Credentials = tokenmanager.Credential

// Token is an access token with its optional refresh token.
type Token = tokenmanager.TokenPair

// Manga is a title in the catalog.
type Manga struct {
	ID                             uuid.UUID
	Title                          LocalizedString
	AltTitles                      []LocalizedString
	Description                    LocalizedString
	IsLocked                       bool
	Links                          OptionalMap[string]
	OriginalLanguage               string
	LastVolume                     string
	LastChapter                    string
	Demographic                    Demographic // empty when unknown
	Status                         Status
	Year                           int // 0 when unknown
	ContentRating                  ContentRating
	Tags                           []Tag
	State                          string
	ChapterNumbersResetOnNewVolume bool
	AvailableTranslatedLanguages   []string
	LatestUploadedChapter          uuid.UUID // uuid.Nil when unknown
	CreatedAt                      time.Time
	UpdatedAt                      time.Time
	Version                        int

	Authors []Author
	Artists []Author
	Cover   *Cover
	Related []RelatedManga
	Creator *User

	// Filled by the client, never decoded.
	ReadingStatus ReadingStatus `json:"-"`
	IsFollowed    bool          `json:"-"`
}

// RelatedManga is a link from one manga to another.
type RelatedManga struct {
	ID      uuid.UUID
	Related string // e.g. "sequel", "adapted_from"
}

func (m *Manga) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Title                          LocalizedString     `json:"title"`
			AltTitles                      []LocalizedString   `json:"altTitles"`
			Description                    LocalizedString     `json:"description"`
			IsLocked                       bool                `json:"isLocked"`
			Links                          OptionalMap[string] `json:"links"`
			OriginalLanguage               string              `json:"originalLanguage"`
			LastVolume                     string              `json:"lastVolume"`
			LastChapter                    string              `json:"lastChapter"`
			PublicationDemographic         Demographic         `json:"publicationDemographic"`
			Status                         Status              `json:"status"`
			Year                           int                 `json:"year"`
			ContentRating                  ContentRating       `json:"contentRating"`
			Tags                           []Tag               `json:"tags"`
			State                          string              `json:"state"`
			ChapterNumbersResetOnNewVolume bool                `json:"chapterNumbersResetOnNewVolume"`
			AvailableTranslatedLanguages   []*string           `json:"availableTranslatedLanguages"`
			LatestUploadedChapter          uuid.NullUUID       `json:"latestUploadedChapter"`
			CreatedAt                      time.Time           `json:"createdAt"`
			UpdatedAt                      time.Time           `json:"updatedAt"`
			Version                        int                 `json:"version"`
		} `json:"attributes"`
		Relationships []relationship `json:"relationships"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a := wire.Attributes
	*m = Manga{
		ID:                             wire.ID,
		Title:                          a.Title,
		AltTitles:                      a.AltTitles,
		Description:                    a.Description,
		IsLocked:                       a.IsLocked,
		Links:                          a.Links,
		OriginalLanguage:               a.OriginalLanguage,
		LastVolume:                     a.LastVolume,
		LastChapter:                    a.LastChapter,
		Demographic:                    a.PublicationDemographic,
		Status:                         a.Status,
		Year:                           a.Year,
		ContentRating:                  a.ContentRating,
		Tags:                           a.Tags,
		State:                          a.State,
		ChapterNumbersResetOnNewVolume: a.ChapterNumbersResetOnNewVolume,
		LatestUploadedChapter:          a.LatestUploadedChapter.UUID,
		CreatedAt:                      a.CreatedAt,
		UpdatedAt:                      a.UpdatedAt,
		Version:                        a.Version,
		ReadingStatus:                  ReadingStatusNone,
	}

	// The service sometimes lists null among the languages.
	for _, lang := range a.AvailableTranslatedLanguages {
		if lang != nil {
			m.AvailableTranslatedLanguages = append(m.AvailableTranslatedLanguages, *lang)
		}
	}

	for _, rel := range wire.Relationships {
		if err := m.addRelationship(rel); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manga) addRelationship(rel relationship) error {
	switch rel.Type {
	case relAuthor, relArtist:
		author, err := decodeAs[Author](rel)
		if err != nil {
			return err
		}

		if rel.Type == relAuthor {
			m.Authors = append(m.Authors, author)
		} else {
			m.Artists = append(m.Artists, author)
		}
	case relCoverArt:
		cover, err := decodeAs[Cover](rel)
		if err != nil {
			return err
		}

		cover.MangaID = m.ID
		m.Cover = &cover
	case relManga:
		m.Related = append(m.Related, RelatedManga{ID: rel.ID, Related: rel.Related})
	case relCreator:
		user, err := decodeAs[User](rel)
		if err != nil {
			return err
		}

		m.Creator = &user
	}

	return nil
}

// FlattenAltTitles groups the alternative titles by language.
func (m *Manga) FlattenAltTitles() map[string][]string {
	flat := make(map[string][]string)

	for _, alt := range m.AltTitles {
		for _, lang := range slices.Sorted(maps.Keys(alt)) {
			flat[lang] = append(flat[lang], alt[lang])
		}
	}

	return flat
}

// Chapter is one chapter of a manga. Page images are served by [AtHomeServer].
type Chapter struct {
	ID                 uuid.UUID
	Title              string
	Volume             string
	Chapter            string
	Pages              int
	TranslatedLanguage string
	ExternalURL        string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	PublishAt          time.Time
	ReadableAt         time.Time

	ScanlationGroups []ScanlationGroup
	Uploader         *User
	Manga            *ParentManga
}

// ParentManga is the manga a chapter belongs to.
type ParentManga struct {
	ID               uuid.UUID
	Title            LocalizedString
	OriginalLanguage string
}

func (p *ParentManga) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Title            LocalizedString `json:"title"`
			OriginalLanguage string          `json:"originalLanguage"`
		} `json:"attributes"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = ParentManga{ID: wire.ID, Title: wire.Attributes.Title, OriginalLanguage: wire.Attributes.OriginalLanguage}

	return nil
}

func (c *Chapter) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Title              string    `json:"title"`
			Volume             string    `json:"volume"`
			Chapter            string    `json:"chapter"`
			Pages              int       `json:"pages"`
			TranslatedLanguage string    `json:"translatedLanguage"`
			ExternalURL        string    `json:"externalUrl"`
			Version            int       `json:"version"`
			CreatedAt          time.Time `json:"createdAt"`
			UpdatedAt          time.Time `json:"updatedAt"`
			PublishAt          time.Time `json:"publishAt"`
			ReadableAt         time.Time `json:"readableAt"`
		} `json:"attributes"`
		Relationships []relationship `json:"relationships"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a := wire.Attributes
	*c = Chapter{
		ID:                 wire.ID,
		Title:              a.Title,
		Volume:             a.Volume,
		Chapter:            a.Chapter,
		Pages:              a.Pages,
		TranslatedLanguage: a.TranslatedLanguage,
		ExternalURL:        a.ExternalURL,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
		PublishAt:          a.PublishAt,
		ReadableAt:         a.ReadableAt,
	}

	for _, rel := range wire.Relationships {
		switch rel.Type {
		case relScanlationGroup:
			group, err := decodeAs[ScanlationGroup](rel)
			if err != nil {
				return err
			}

			c.ScanlationGroups = append(c.ScanlationGroups, group)
		case relUser:
			user, err := decodeAs[User](rel)
			if err != nil {
				return err
			}

			c.Uploader = &user
		case relManga:
			parent, err := decodeAs[ParentManga](rel)
			if err != nil {
				return err
			}

			c.Manga = &parent
		}
	}

	return nil
}

// Author is a writer or artist.
type Author struct {
	ID        uuid.UUID
	Name      string
	ImageURL  string
	Biography LocalizedString
	Socials   AuthorSocials
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
	MangaIDs  []uuid.UUID
}

// AuthorSocials are an author's external profiles. Unknown ones are empty.
type AuthorSocials struct {
	Twitter   string `json:"twitter"`
	Pixiv     string `json:"pixiv"`
	MelonBook string `json:"melonBook"`
	FanBox    string `json:"fanBox"`
	Booth     string `json:"booth"`
	NicoVideo string `json:"nicoVideo"`
	Skeb      string `json:"skeb"`
	Fantia    string `json:"fantia"`
	Tumblr    string `json:"tumblr"`
	Youtube   string `json:"youtube"`
	Weibo     string `json:"weibo"`
	Naver     string `json:"naver"`
	Namicomi  string `json:"namicomi"`
	Website   string `json:"website"`
}

func (a *Author) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			AuthorSocials

			Name      string          `json:"name"`
			ImageURL  string          `json:"imageUrl"`
			Biography LocalizedString `json:"biography"`
			CreatedAt time.Time       `json:"createdAt"`
			UpdatedAt time.Time       `json:"updatedAt"`
			Version   int             `json:"version"`
		} `json:"attributes"`
		Relationships []relationship `json:"relationships"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	attrs := wire.Attributes
	*a = Author{
		ID:        wire.ID,
		Name:      attrs.Name,
		ImageURL:  attrs.ImageURL,
		Biography: attrs.Biography,
		Socials:   attrs.AuthorSocials,
		CreatedAt: attrs.CreatedAt,
		UpdatedAt: attrs.UpdatedAt,
		Version:   attrs.Version,
	}

	for _, rel := range wire.Relationships {
		if rel.Type == relManga {
			a.MangaIDs = append(a.MangaIDs, rel.ID)
		}
	}

	return nil
}

// CoverSize selects a cover thumbnail.
type CoverSize int

const (
	CoverOriginal CoverSize = iota
	CoverMedium             // 512px wide
	CoverSmall              // 256px wide
)

// Cover is the cover art of one volume.
type Cover struct {
	ID          uuid.UUID
	Volume      string
	FileName    string
	Description string
	Locale      string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MangaID     uuid.UUID // uuid.Nil unless known
}

func (c *Cover) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Volume      string    `json:"volume"`
			FileName    string    `json:"fileName"`
			Description string    `json:"description"`
			Locale      string    `json:"locale"`
			Version     int       `json:"version"`
			CreatedAt   time.Time `json:"createdAt"`
			UpdatedAt   time.Time `json:"updatedAt"`
		} `json:"attributes"`
		Relationships []relationship `json:"relationships"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a := wire.Attributes
	*c = Cover{
		ID:          wire.ID,
		Volume:      a.Volume,
		FileName:    a.FileName,
		Description: a.Description,
		Locale:      a.Locale,
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	for _, rel := range wire.Relationships {
		if rel.Type == relManga {
			c.MangaID = rel.ID
		}
	}

	return nil
}

// URL returns the image URL on the default uploads host.
func (c Cover) URL(mangaID uuid.UUID, size CoverSize) string {
	return CoverURL(config.DefaultUploadsURL, mangaID, c.FileName, size)
}

// Tag is a genre, theme, format or content warning.
type Tag struct {
	ID          uuid.UUID
	Name        LocalizedString
	Group       string
	Description LocalizedString
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Name        LocalizedString `json:"name"`
			Group       string          `json:"group"`
			Description LocalizedString `json:"description"`
		} `json:"attributes"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*t = Tag{ID: wire.ID, Name: wire.Attributes.Name, Group: wire.Attributes.Group, Description: wire.Attributes.Description}

	return nil
}

// User is an account on the service.
type User struct {
	ID       uuid.UUID
	Username string
	Roles    []string
	Version  int
}

func (u *User) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
			Version  int      `json:"version"`
		} `json:"attributes"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*u = User{ID: wire.ID, Username: wire.Attributes.Username, Roles: wire.Attributes.Roles, Version: wire.Attributes.Version}

	return nil
}

// ScanlationGroup is a team that translates chapters.
type ScanlationGroup struct {
	ID               uuid.UUID
	Name             string
	Website          string
	Discord          string
	ContactEmail     string
	Twitter          string
	MangaUpdates     string
	Description      string
	FocusedLanguages []string
	Locked           bool
	Official         bool
	Verified         bool
	Inactive         bool
	ExLicensed       bool
	PublishDelay     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int

	Leader  *User
	Members []User
}

func (g *ScanlationGroup) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         uuid.UUID `json:"id"`
		Attributes struct {
			Name             string    `json:"name"`
			Website          string    `json:"website"`
			Discord          string    `json:"discord"`
			ContactEmail     string    `json:"contactEmail"`
			Twitter          string    `json:"twitter"`
			MangaUpdates     string    `json:"mangaUpdates"`
			Description      string    `json:"description"`
			FocusedLanguages []string  `json:"focusedLanguages"`
			Locked           bool      `json:"locked"`
			Official         bool      `json:"official"`
			Verified         bool      `json:"verified"`
			Inactive         bool      `json:"inactive"`
			ExLicensed       bool      `json:"exLicensed"`
			PublishDelay     string    `json:"publishDelay"`
			CreatedAt        time.Time `json:"createdAt"`
			UpdatedAt        time.Time `json:"updatedAt"`
			Version          int       `json:"version"`
		} `json:"attributes"`
		Relationships []relationship `json:"relationships"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a := wire.Attributes
	*g = ScanlationGroup{
		ID:               wire.ID,
		Name:             a.Name,
		Website:          a.Website,
		Discord:          a.Discord,
		ContactEmail:     a.ContactEmail,
		Twitter:          a.Twitter,
		MangaUpdates:     a.MangaUpdates,
		Description:      a.Description,
		FocusedLanguages: a.FocusedLanguages,
		Locked:           a.Locked,
		Official:         a.Official,
		Verified:         a.Verified,
		Inactive:         a.Inactive,
		ExLicensed:       a.ExLicensed,
		PublishDelay:     a.PublishDelay,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		Version:          a.Version,
	}

	for _, rel := range wire.Relationships {
		switch rel.Type {
		case relLeader:
			leader, err := decodeAs[User](rel)
			if err != nil {
				return err
			}

			g.Leader = &leader
		case relMember:
			member, err := decodeAs[User](rel)
			if err != nil {
				return err
			}

			g.Members = append(g.Members, member)
		}
	}

	return nil
}

// Comments points at the forum thread of a manga or chapter.
type Comments struct {
	ThreadID     int `json:"threadId"`
	RepliesCount int `json:"repliesCount"`
}

// URL returns the thread URL on forumsBase.
func (c Comments) URL(forumsBase string) string {
	return fmt.Sprintf("%s/threads/%d", forumsBase, c.ThreadID)
}

// Rating summarizes user scores of a manga.
type Rating struct {
	Average      float64          `json:"average"`
	Bayesian     float64          `json:"bayesian"`
	Distribution OptionalMap[int] `json:"distribution"`
}

// TotalRatings returns the number of scores cast.
func (r Rating) TotalRatings() int {
	total := 0
	for _, n := range r.Distribution {
		total += n
	}

	return total
}

// MangaStatistics are the public counters of a manga.
type MangaStatistics struct {
	Comments *Comments `json:"comments"`
	Rating   Rating    `json:"rating"`
	Follows  int       `json:"follows"`
}

// ChapterStatistics are the public counters of a chapter.
type ChapterStatistics struct {
	Comments *Comments `json:"comments"`
}

// AtHomeServer tells where the page images of one chapter can be downloaded.
type AtHomeServer struct {
	BaseURL   string
	Hash      string
	Data      []string
	DataSaver []string
}

func (s *AtHomeServer) UnmarshalJSON(data []byte) error {
	var wire struct {
		BaseURL string `json:"baseUrl"`
		Chapter struct {
			Hash      string   `json:"hash"`
			Data      []string `json:"data"`
			DataSaver []string `json:"dataSaver"`
		} `json:"chapter"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*s = AtHomeServer{
		BaseURL:   wire.BaseURL,
		Hash:      wire.Chapter.Hash,
		Data:      wire.Chapter.Data,
		DataSaver: wire.Chapter.DataSaver,
	}

	return nil
}

// PageURLs returns the page image URLs in reading order.
// dataSaver selects the compressed variants.
func (s AtHomeServer) PageURLs(dataSaver bool) []string {
	quality, files := "data", s.Data
	if dataSaver {
		quality, files = "data-saver", s.DataSaver
	}

	urls := make([]string, len(files))
	for i, file := range files {
		urls[i] = s.BaseURL + "/" + quality + "/" + s.Hash + "/" + file
	}

	return urls
}

// ReadMarkers lists the chapters marked as read, per manga.
type ReadMarkers map[uuid.UUID][]uuid.UUID

// ReadMarkerUpdate marks chapters of one manga as read or unread.
type ReadMarkerUpdate struct {
	ChapterIDsRead   []uuid.UUID `json:"chapterIdsRead,omitempty"`
	ChapterIDsUnread []uuid.UUID `json:"chapterIdsUnread,omitempty"`
}
