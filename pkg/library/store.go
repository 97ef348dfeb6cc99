package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/doorhinge/wallscenes/util/log"
	"github.com/google/uuid"
)

// Store is a thread-safe owner of the image and scene collections.
// Every mutation is persisted to a single JSON document.
type Store struct {
	mu       sync.RWMutex
	images   []Image
	imageIdx map[string]int // id -> index in images
	scenes   []Scene
	sceneIdx map[string]int // id -> index in scenes

	updateCh chan struct{}

	docPath string
	fm      *FileManager

	// Set when the document on disk could not be decoded. Orphan cleanup is
	// skipped, and so are saves while the document could not be moved aside.
	loadFailed bool
	readOnly   bool

	// Imports copying a file that has no record yet.
	importing int

	writeMu sync.Mutex

	// Testing hook
	saveFunc func()
}

// NewStore creates an empty store persisting to docPath, with imported files managed by fm.
func NewStore(docPath string, fm *FileManager) *Store {
	return &Store{
		images:           make([]Image, 0),
		imageIdx:         make(map[string]int),
		scenes:           make([]Scene, 0),
		sceneIdx:         make(map[string]int),
		updateCh: make(chan struct{}),
		docPath:  docPath,
		fm:       fm,
	}
}

// FileManager returns the file manager backing the store.
func (s *Store) FileManager() *FileManager {
	return s.fm
}

// mutatedLocked persists and broadcasts a change.
// CALLER MUST HOLD s.mu.Lock()
func (s *Store) mutatedLocked() {
	s.notifyUpdateLocked()
	s.scheduleSaveLocked()
}

// scheduleSaveLocked writes the document synchronously.
// CALLER MUST HOLD s.mu.Lock()
func (s *Store) scheduleSaveLocked() {
	if s.readOnly {
		log.Printf("Store: Not saving, %s could not be read or backed up", s.docPath)
		return
	}
	if err := s.writeDocument(s.snapshotLocked()); err != nil {
		log.Printf("Store: Failed to save library: %v", err)
	}
}

// snapshotLocked deep-copies the collections for encoding.
// CALLER MUST HOLD s.mu (read or write)
func (s *Store) snapshotLocked() document {
	doc := document{
		Images: make([]Image, len(s.images)),
		Scenes: make([]Scene, len(s.scenes)),
	}
	for i, img := range s.images {
		doc.Images[i] = img.clone()
	}
	for i, sc := range s.scenes {
		doc.Scenes[i] = sc.clone()
	}
	return doc
}

// reindexLocked rebuilds the id lookups.
// CALLER MUST HOLD s.mu.Lock()
func (s *Store) reindexLocked() {
	s.imageIdx = make(map[string]int, len(s.images))
	for i, img := range s.images {
		s.imageIdx[img.ID] = i
	}
	s.sceneIdx = make(map[string]int, len(s.scenes))
	for i, sc := range s.scenes {
		s.sceneIdx[sc.ID] = i
	}
}

// BackupPath returns where an undecodable document is moved by Load.
func (s *Store) BackupPath() string {
	return s.docPath + ".bak"
}

// LoadFailed reports whether the last Load could not decode the document.
func (s *Store) LoadFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadFailed
}

// Load reads the library document. A missing document leaves the store empty.
// An undecodable document is moved to BackupPath so later saves cannot
// overwrite it; if that move fails the store refuses to save.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docPath == "" {
		return nil
	}

	file, err := os.Open(s.docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var doc document
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		file.Close()
		s.loadFailed = true
		if rerr := os.Rename(s.docPath, s.BackupPath()); rerr != nil {
			s.readOnly = true
			log.Printf("Store: Could not back up unreadable library: %v", rerr)
		} else {
			log.Printf("Store: Moved unreadable library to %s", s.BackupPath())
		}
		return fmt.Errorf("decoding %s: %w", s.docPath, err)
	}

	s.images = make([]Image, 0, len(doc.Images))
	for _, img := range doc.Images {
		img.Groups = normalizeGroups(img.Groups)
		s.images = append(s.images, img)
	}
	s.scenes = make([]Scene, 0, len(doc.Scenes))
	for _, sc := range doc.Scenes {
		if sc.Assignments == nil {
			sc.Assignments = make(map[string]string)
		}
		s.scenes = append(s.scenes, sc)
	}
	s.reindexLocked()
	s.loadFailed, s.readOnly = false, false
	s.notifyUpdateLocked()
	log.Printf("Store: Loaded %d images and %d scenes", len(s.images), len(s.scenes))
	return nil
}

// Save writes the library document atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	doc := s.snapshotLocked()
	readOnly := s.readOnly
	s.mu.RUnlock()

	if readOnly {
		return fmt.Errorf("not overwriting unreadable %s", s.docPath)
	}
	return s.writeDocument(doc)
}

// writeDocument is serialized so concurrent saves never share the temp file.
func (s *Store) writeDocument(doc document) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.saveFunc != nil {
		s.saveFunc()
	}

	if s.docPath == "" {
		return nil
	}

	tmp := s.docPath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding library: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, s.docPath); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// --- Images ---

// AddImage inserts a new image record. The id must be unique.
func (s *Store) AddImage(img Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if _, exists := s.imageIdx[img.ID]; exists {
		return fmt.Errorf("image %s already exists", img.ID)
	}
	img.Groups = normalizeGroups(img.Groups)
	s.images = append(s.images, img)
	s.imageIdx[img.ID] = len(s.images) - 1
	s.mutatedLocked()
	return nil
}

// Image returns the image with the given id.
func (s *Store) Image(id string) (Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.imageIdx[id]
	if !ok {
		return Image{}, false
	}
	return s.images[idx].clone(), true
}

// Images returns all images in import order.
func (s *Store) Images() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Image, len(s.images))
	for i, img := range s.images {
		res[i] = img.clone()
	}
	return res
}

// ImageCount returns the number of images.
func (s *Store) ImageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Groups returns the sorted distinct tags used by any image.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []string
	for _, img := range s.images {
		all = append(all, img.Groups...)
	}
	return normalizeGroups(all)
}

// ImagesInGroup returns the images carrying tag. An empty tag returns every image.
func (s *Store) ImagesInGroup(tag string) []Image {
	if strings.TrimSpace(tag) == "" {
		return s.Images()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []Image
	for _, img := range s.images {
		if img.InGroup(tag) {
			res = append(res, img.clone())
		}
	}
	return res
}

// updateImage applies fn to the stored record with the given id.
func (s *Store) updateImage(id string, fn func(*Image)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.imageIdx[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	fn(&s.images[idx])
	s.images[idx].Groups = normalizeGroups(s.images[idx].Groups)
	s.mutatedLocked()
	return nil
}

// RenameImage sets the user label of an image.
func (s *Store) RenameImage(id, name string) error {
	return s.updateImage(id, func(img *Image) {
		img.DisplayName = strings.TrimSpace(name)
	})
}

// SetImageGroups replaces the tags of an image.
func (s *Store) SetImageGroups(id string, groups []string) error {
	return s.updateImage(id, func(img *Image) {
		img.Groups = append([]string(nil), groups...)
	})
}

// AddImageToGroup adds a single tag to an image.
func (s *Store) AddImageToGroup(id, tag string) error {
	return s.updateImage(id, func(img *Image) {
		img.Groups = append(img.Groups, tag)
	})
}

// RemoveImageFromGroup removes a single tag from an image.
func (s *Store) RemoveImageFromGroup(id, tag string) error {
	tag = strings.TrimSpace(tag)
	return s.updateImage(id, func(img *Image) {
		kept := img.Groups[:0]
		for _, g := range img.Groups {
			if g != tag {
				kept = append(kept, g)
			}
		}
		img.Groups = kept
	})
}

// DeleteImage removes the record and its backing file. Scenes that assign
// the image keep the dangling reference.
func (s *Store) DeleteImage(id string) error {
	s.mu.Lock()
	idx, ok := s.imageIdx[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	img := s.images[idx]
	s.images = append(s.images[:idx], s.images[idx+1:]...)
	s.reindexLocked()
	s.mutatedLocked()
	s.mu.Unlock()

	// The record is gone either way; a file left behind is an orphan that
	// CleanupOrphans removes on a later start.
	if s.fm != nil {
		if err := s.fm.Delete(img.FileName); err != nil {
			log.Printf("Store: Deleted image %s but kept its file: %v", img.ID, err)
			return nil
		}
	}
	log.Printf("Store: Deleted image %s (%s)", img.ID, img.DisplayName)
	return nil
}

// DeleteImages removes several images; failures are joined.
func (s *Store) DeleteImages(ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := s.DeleteImage(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ImagePath returns the absolute path of the file backing an image.
func (s *Store) ImagePath(id string) (string, error) {
	img, ok := s.Image(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	if s.fm == nil {
		return "", fmt.Errorf("no file manager configured")
	}
	return s.fm.GetPath(img.FileName)
}

// CleanupOrphans removes files in the images folder no record points at.
// The store lock is held for the whole scan so no import can start; it does
// nothing while an import is copying or after a failed Load.
func (s *Store) CleanupOrphans() int {
	if s.fm == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadFailed {
		log.Print("Store: Skipping orphan cleanup, the library document could not be read")
		return 0
	}
	if s.importing > 0 {
		log.Printf("Store: Skipping orphan cleanup, %d imports in progress", s.importing)
		return 0
	}
	known := make(map[string]bool, len(s.images))
	for _, img := range s.images {
		known[img.FileName] = true
	}
	return s.fm.CleanupOrphans(known)
}

func (s *Store) beginImport() {
	s.mu.Lock()
	s.importing++
	s.mu.Unlock()
}

func (s *Store) endImport() {
	s.mu.Lock()
	s.importing--
	s.mu.Unlock()
}

// --- Scenes ---

// Scene returns the scene with the given id.
func (s *Store) Scene(id string) (Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.sceneIdx[id]
	if !ok {
		return Scene{}, false
	}
	return s.scenes[idx].clone(), true
}

// Scenes returns all scenes sorted by name.
func (s *Store) Scenes() []Scene {
	s.mu.RLock()
	res := make([]Scene, len(s.scenes))
	for i, sc := range s.scenes {
		res[i] = sc.clone()
	}
	s.mu.RUnlock()

	sort.SliceStable(res, func(i, j int) bool {
		return strings.ToLower(res[i].Name) < strings.ToLower(res[j].Name)
	})
	return res
}

// SaveScene inserts the scene, or replaces the stored scene with the same id.
// A scene without an id gets a fresh one. The stored copy is returned.
func (s *Store) SaveScene(scene Scene) (Scene, error) {
	scene = scene.clone()
	scene.Name = strings.TrimSpace(scene.Name)
	if scene.Name == "" {
		return Scene{}, fmt.Errorf("scene name is empty")
	}
	for displayID, imageID := range scene.Assignments {
		if imageID == "" {
			delete(scene.Assignments, displayID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if scene.ID == "" {
		scene.ID = uuid.NewString()
	}
	if idx, ok := s.sceneIdx[scene.ID]; ok {
		s.scenes[idx] = scene
	} else {
		s.scenes = append(s.scenes, scene)
		s.sceneIdx[scene.ID] = len(s.scenes) - 1
	}
	s.mutatedLocked()
	return scene.clone(), nil
}

// updateScene applies fn to the stored scene with the given id.
func (s *Store) updateScene(id string, fn func(*Scene)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.sceneIdx[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	fn(&s.scenes[idx])
	s.mutatedLocked()
	return nil
}

// SetAssignment assigns imageID to displayID in a scene.
func (s *Store) SetAssignment(sceneID, displayID, imageID string) error {
	if imageID == "" {
		return s.ClearAssignment(sceneID, displayID)
	}
	return s.updateScene(sceneID, func(sc *Scene) {
		if sc.Assignments == nil {
			sc.Assignments = make(map[string]string)
		}
		sc.Assignments[displayID] = imageID
	})
}

// ClearAssignment removes the assignment for displayID from a scene.
func (s *Store) ClearAssignment(sceneID, displayID string) error {
	return s.updateScene(sceneID, func(sc *Scene) {
		delete(sc.Assignments, displayID)
	})
}

// SetSceneForAllDesktops sets whether a scene propagates to every Space.
func (s *Store) SetSceneForAllDesktops(sceneID string, all bool) error {
	return s.updateScene(sceneID, func(sc *Scene) {
		sc.SetForAllDesktops = all
	})
}

// DeleteScene removes a scene.
func (s *Store) DeleteScene(id string) error {
	return s.DeleteScenes([]string{id})
}

// DeleteScenes removes several scenes in one write. Unknown ids are reported
// in the joined error; the known ones are still removed.
func (s *Store) DeleteScenes(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	var errs []error
	for _, id := range ids {
		if _, ok := s.sceneIdx[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrSceneNotFound, id))
			continue
		}
		drop[id] = true
	}
	if len(drop) == 0 {
		return errors.Join(errs...)
	}

	kept := make([]Scene, 0, len(s.scenes)-len(drop))
	for _, sc := range s.scenes {
		if !drop[sc.ID] {
			kept = append(kept, sc)
		}
	}
	s.scenes = kept
	s.reindexLocked()
	s.mutatedLocked()
	return errors.Join(errs...)
}

// MissingAssignments returns the display ids of a scene whose image no longer exists.
func (s *Store) MissingAssignments(scene Scene) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for displayID, imageID := range scene.Assignments {
		if _, ok := s.imageIdx[imageID]; !ok {
			missing = append(missing, displayID)
		}
	}
	sort.Strings(missing)
	return missing
}
