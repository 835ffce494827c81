package pipeline

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

// Unpack returns the text files of an archive. Multi-annual files are plain
// text; 10-minute archives must hold at least one .txt member.
func Unpack(ref domain.ArchiveRef, data []byte) ([]Member, error) {
	if !ref.Zipped() {
		return []Member{{Name: ref.Name, Text: strings.ToValidUTF8(string(data), "")}}, nil
	}
	members, err := TextMembers(data)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, errors.New("archive has no .txt members")
	}
	return members, nil
}

// Member is a text file extracted from an archive.
type Member struct {
	Name string
	Text string
}

// TextMembers returns the .txt members of a zip archive in archive order.
// Invalid UTF-8 sequences are dropped.
func TextMembers(data []byte) ([]Member, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var members []Member
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".txt") {
			continue
		}
		text, err := readMember(f)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Name: f.Name, Text: text})
	}
	return members, nil
}

func readMember(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return strings.ToValidUTF8(string(b), ""), nil
}
