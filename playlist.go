package main

// PlaylistEntry is one loadable media item. Entries are never mutated after Append.
type PlaylistEntry struct {
	Name string
	URL  string
}

// Playlist is the ordered list of entries the controller navigates
type Playlist struct {
	entries []PlaylistEntry
}

// Append adds an entry and returns its index
func (p *Playlist) Append(name, url string) int {
	p.entries = append(p.entries, PlaylistEntry{Name: name, URL: url})
	return len(p.entries) - 1
}

// At returns the entry at index i, or false when i is out of range
func (p *Playlist) At(i int) (PlaylistEntry, bool) {
	if i < 0 || i >= len(p.entries) {
		return PlaylistEntry{}, false
	}
	return p.entries[i], true
}

func (p *Playlist) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the playlist
func (p *Playlist) Entries() []PlaylistEntry {
	out := make([]PlaylistEntry, len(p.entries))
	copy(out, p.entries)
	return out
}
