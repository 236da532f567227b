package content

import (
	"path"

	"github.com/starford/things/internal/checksum"
)

// Fingerprint summarizes every source file of typ: structured files, loose
// lists and the inbox list. It changes whenever any of them is added,
// removed or edited.
func (r *Resolver) Fingerprint(typ string) (string, error) {
	set := checksum.NewSet()
	files, err := r.content.Walk(typ, r.ext)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		set.Add("content:"+f.Path, f.Checksum)
	}
	names, err := r.content.Files(typ, listExts...)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		p := path.Join(typ, name)
		data, err := r.content.Read(p)
		if err != nil {
			return "", err
		}
		set.AddData("content:"+p, data)
	}
	if name, ok := InboxFile(r.inbox, typ); ok {
		data, err := r.inbox.Read(name)
		if err != nil {
			return "", err
		}
		set.AddData("inbox:"+name, data)
	}
	return set.Sum(), nil
}
