package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ErrUnsupportedMedia is returned for selected files that are not audio or video
var ErrUnsupportedMedia = errors.New("not a video or audio file")

// videoExtensions limits what the file picker offers
var videoExtensions = []string{".mp4", ".mkv", ".webm", ".mov", ".avi", ".m4v", ".ogv", ".mp3", ".m4a", ".ogg", ".flac", ".wav"}

// filesSelectedMsg carries files chosen on the command line or in the picker
type filesSelectedMsg struct {
	files []MediaFile
	errs  []error
}

// watchedFileMsg carries a file that appeared in the watched folder
type watchedFileMsg struct {
	file MediaFile
}

// resolveMediaFile turns a path or URL into a playlist-ready MediaFile.
// Local files are sniffed so only audio and video make it into the playlist.
func resolveMediaFile(location string) (MediaFile, error) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name := path.Base(u.Path)
		if name == "/" || name == "." {
			name = u.Host
		}
		return MediaFile{Name: name, URL: location}, nil
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return MediaFile{}, fmt.Errorf("resolve %s: %w", location, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return MediaFile{}, fmt.Errorf("open %s: %w", location, err)
	}
	if info.IsDir() {
		return MediaFile{}, fmt.Errorf("%s is a directory: %w", location, ErrUnsupportedMedia)
	}

	mtype, err := mimetype.DetectFile(abs)
	if err != nil {
		return MediaFile{}, fmt.Errorf("detect type of %s: %w", location, err)
	}
	if !isPlayableMIME(mtype.String()) {
		return MediaFile{}, fmt.Errorf("%s (%s): %w", filepath.Base(abs), mtype.String(), ErrUnsupportedMedia)
	}

	return MediaFile{Name: filepath.Base(abs), URL: abs}, nil
}

func isPlayableMIME(m string) bool {
	return strings.HasPrefix(m, "video/") || strings.HasPrefix(m, "audio/")
}

// selectFiles resolves locations in order, keeping the good ones
func selectFiles(locations []string) filesSelectedMsg {
	var msg filesSelectedMsg
	for _, loc := range locations {
		f, err := resolveMediaFile(loc)
		if err != nil {
			msg.errs = append(msg.errs, err)
			continue
		}
		msg.files = append(msg.files, f)
	}
	return msg
}

// folderWatcher appends media files dropped into a directory
type folderWatcher struct {
	watcher *fsnotify.Watcher
	files   chan MediaFile
	logger  *zap.Logger

	mu   sync.Mutex
	seen map[string]bool
}

func watchFolder(dir string, logger *zap.Logger) (*folderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	fw := &folderWatcher{
		watcher: w,
		files:   make(chan MediaFile, 16),
		logger:  logger.Named("watch"),
		seen:    make(map[string]bool),
	}
	go fw.run()
	return fw, nil
}

func (fw *folderWatcher) run() {
	defer close(fw.files)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			fw.consider(event.Name)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// consider forwards a path once it sniffs as media. Files still being
// written are retried on their next Write event.
func (fw *folderWatcher) consider(name string) {
	fw.mu.Lock()
	if fw.seen[name] {
		fw.mu.Unlock()
		return
	}
	fw.mu.Unlock()

	f, err := resolveMediaFile(name)
	if err != nil {
		fw.logger.Debug("skipping file", zap.String("path", name), zap.Error(err))
		return
	}

	fw.mu.Lock()
	fw.seen[name] = true
	fw.mu.Unlock()
	fw.files <- f
}

// waitForFileCmd blocks until the watcher finds a file
func (fw *folderWatcher) waitForFileCmd() tea.Cmd {
	return func() tea.Msg {
		f, ok := <-fw.files
		if !ok {
			return nil
		}
		return watchedFileMsg{file: f}
	}
}

func (fw *folderWatcher) Close() error {
	return fw.watcher.Close()
}
