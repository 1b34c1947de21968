package prompts

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/solarchat/backend/internal/domain"
)

const (
	backupDirName    = "backups"
	backupKeep       = 10
	backupTimeLayout = "20060102_150405"
	dateLayout       = "2006-01-02"
)

// Store manages the chatbot prompts from one central JSON file. Prompts
// are held in memory for fast access and can be edited through the API;
// every edit backs up the previous file state first.
type Store struct {
	path      string
	backupDir string

	mu    sync.RWMutex
	file  domain.PromptFile
	index map[string]*domain.Prompt

	watcher *fsnotify.Watcher
}

// NewStore loads the prompt file, creating it with the built-in defaults
// when it does not exist yet.
func NewStore(path string) (*Store, error) {
	store := &Store{
		path:      path,
		backupDir: filepath.Join(filepath.Dir(path), backupDirName),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("[PROMPTS] %s missing, writing default prompt file", path)
		if err := store.writeDefaults(); err != nil {
			return nil, fmt.Errorf("failed to create default prompts: %w", err)
		}
	}

	if err := store.Reload(); err != nil {
		return nil, err
	}

	return store, nil
}

// Reload re-reads the prompt file from disk
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read prompt file: %w", err)
	}

	var file domain.PromptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse prompt file: %w", err)
	}

	index := make(map[string]*domain.Prompt)
	for i := range file.Categories {
		for j := range file.Categories[i].Prompts {
			prompt := &file.Categories[i].Prompts[j]
			if prompt.ID != "" {
				index[prompt.ID] = prompt
			}
		}
	}

	s.mu.Lock()
	s.file = file
	s.index = index
	s.mu.Unlock()

	log.Printf("[PROMPTS] loaded %d prompts from %s", len(index), s.path)
	return nil
}

// Prompt returns the template text for an id. Keyword-list prompts report
// an empty text; callers use Keywords for those.
func (s *Store) Prompt(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prompt, ok := s.index[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrPromptNotFound, id)
	}
	return prompt.Content.Text, nil
}

// Keywords returns the keyword list for an id. Prompts holding template
// text report an empty list.
func (s *Store) Keywords(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prompt, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPromptNotFound, id)
	}
	return prompt.Content.List, nil
}

// File returns a copy of the loaded prompt collection
func (s *Store) File() domain.PromptFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.file
	out.Categories = make([]domain.PromptCategory, len(s.file.Categories))
	copy(out.Categories, s.file.Categories)
	for i := range out.Categories {
		prompts := make([]domain.Prompt, len(out.Categories[i].Prompts))
		copy(prompts, out.Categories[i].Prompts)
		out.Categories[i].Prompts = prompts
	}
	return out
}

// Update replaces the content of an editable prompt and persists the file.
// The previous file state is backed up first.
func (s *Store) Update(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPromptNotFound, id)
	}
	if !prompt.IsEditable() {
		return fmt.Errorf("%w: %s", domain.ErrPromptReadOnly, id)
	}

	s.createBackup()

	prompt.Content = domain.PromptContent{Text: content}
	s.file.LastUpdated = time.Now().Format(dateLayout)

	return s.save()
}

// Watch reloads the store whenever the prompt file changes on disk, so
// edits made outside the API become visible without a restart.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// watch the directory: editors tend to replace the file rather than
	// write it in place
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.watcher = watcher

	go func() {
		target := filepath.Clean(s.path)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("[PROMPTS] reload after file change failed: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[PROMPTS] watcher error: %v", err)
			}
		}
	}()

	return nil
}

// Close stops the file watcher
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// save writes the prompt file. Caller must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode prompts: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prompt file: %w", err)
	}
	return nil
}

// createBackup copies the current file into the backup directory. Backup
// failure only logs; an edit must not be blocked by it.
func (s *Store) createBackup() {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		log.Printf("[PROMPTS] could not create backup dir: %v", err)
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		log.Printf("[PROMPTS] could not back up prompt file: %v", err)
		return
	}

	name := fmt.Sprintf("prompts_backup_%s.json", time.Now().Format(backupTimeLayout))
	if err := os.WriteFile(filepath.Join(s.backupDir, name), data, 0644); err != nil {
		log.Printf("[PROMPTS] could not write backup: %v", err)
		return
	}

	s.cleanupOldBackups()
}

// cleanupOldBackups keeps only the newest backups. The timestamp in the
// file name sorts chronologically.
func (s *Store) cleanupOldBackups() {
	backups, err := filepath.Glob(filepath.Join(s.backupDir, "prompts_backup_*.json"))
	if err != nil || len(backups) <= backupKeep {
		return
	}

	sort.Strings(backups)
	for _, old := range backups[:len(backups)-backupKeep] {
		if err := os.Remove(old); err != nil {
			log.Printf("[PROMPTS] could not remove old backup %s: %v", old, err)
		}
	}
}

func (s *Store) writeDefaults() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	file := defaultPromptFile()
	file.LastUpdated = time.Now().Format(dateLayout)

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
