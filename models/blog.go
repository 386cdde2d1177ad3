package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// FileRef points at a stored binary object together with its display name.
// A zero FileRef means "no file" and marshals as JSON null.
type FileRef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// IsZero reports whether the reference is unset.
func (f FileRef) IsZero() bool {
	return f.URL == "" && f.Name == ""
}

func (f FileRef) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	type alias FileRef
	return json.Marshal(alias(f))
}

func (f *FileRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = FileRef{}
		return nil
	}
	type alias FileRef
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*f = FileRef(a)
	return nil
}

// Value stores the reference as a JSON string column, NULL when unset.
func (f FileRef) Value() (driver.Value, error) {
	if f.IsZero() {
		return nil, nil
	}
	type alias FileRef
	b, err := json.Marshal(alias(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FileRef) Scan(value interface{}) error {
	return scanJSONColumn(value, f)
}

// TagList is an ordered set of tag strings stored as a JSON text column.
type TagList []string

// Contains reports whether tag is already present.
func (t TagList) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TagList) Scan(value interface{}) error {
	return scanJSONColumn(value, t)
}

// FileRefList is an ordered attachment sequence stored as a JSON text column.
type FileRefList []FileRef

func (l FileRefList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *FileRefList) Scan(value interface{}) error {
	return scanJSONColumn(value, l)
}

func scanJSONColumn(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported column type for JSON scan")
	}
}

// Blog represents a durably persisted blog post.
// AuthorName is a snapshot of the author's username taken at creation time;
// it is not re-synced when the author later renames.
type Blog struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	AuthorID    uint        `gorm:"index;not null" json:"author_id"`
	AuthorName  string      `gorm:"size:64;not null" json:"author_name"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	Tags        TagList     `gorm:"type:text" json:"tags"`
	Thumbnail   FileRef     `gorm:"size:1024" json:"thumbnail"`
	Attachments FileRefList `gorm:"type:text" json:"attachments"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// BlogPatch carries the mutable fields of an update. AuthorID and
// AuthorName are deliberately absent: authorship never changes.
type BlogPatch struct {
	Title       string
	Content     string
	Tags        TagList
	Thumbnail   FileRef
	Attachments FileRefList
}
