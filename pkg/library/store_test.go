package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePersistence(t *testing.T) {
	store, root := newTestStore(t)

	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png", DisplayName: "Beach", Groups: []string{"summer", "blue"}}))
	require.NoError(t, store.AddImage(Image{ID: "img2", FileName: "b.jpg", DisplayName: "Forest", Groups: []string{}}))
	_, err := store.SaveScene(Scene{
		ID:                "scene1",
		Name:              "Work",
		Assignments:       map[string]string{"Color LCD": "img1", "U34G2G1": "img2"},
		SetForAllDesktops: true,
	})
	require.NoError(t, err)

	if _, err := os.Stat(filepath.Join(root, "library.json")); os.IsNotExist(err) {
		t.Fatal("Library file not created")
	}

	store2 := NewStore(filepath.Join(root, "library.json"), store.FileManager())
	require.NoError(t, store2.Load())

	assert.Equal(t, store.Images(), store2.Images())
	assert.Equal(t, store.Scenes(), store2.Scenes())

	img, ok := store2.Image("img1")
	require.True(t, ok)
	assert.Equal(t, []string{"blue", "summer"}, img.Groups)
}

func TestStore_LoadMissingDocument(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Load())
	assert.Equal(t, 0, store.ImageCount())
	assert.Empty(t, store.Scenes())
}

func TestStore_LoadCorruptDocument(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "library.json"), []byte("{not json"), 0644))
	assert.Error(t, store.Load())
	assert.True(t, store.LoadFailed())

	backup, err := os.ReadFile(store.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
}

func TestStore_CorruptDocumentKeepsImageFiles(t *testing.T) {
	store, root := newTestStore(t)
	img, err := store.ImportFile(writePNG(t, t.TempDir(), "a.png"))
	require.NoError(t, err)
	docPath := filepath.Join(root, "library.json")
	require.NoError(t, os.WriteFile(docPath, []byte(`{"images": [`), 0644))

	restarted := NewStore(docPath, store.FileManager())
	require.Error(t, restarted.Load())
	assert.Equal(t, 0, restarted.CleanupOrphans())
	assert.True(t, store.FileManager().Exists(img.FileName), "image files must survive an unreadable library")

	_, err = restarted.SaveScene(Scene{Name: "After"})
	require.NoError(t, err)
	backup, err := os.ReadFile(restarted.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, `{"images": [`, string(backup), "the unreadable document is kept aside")
}

func TestStore_RefusesSaveWhenBackupFails(t *testing.T) {
	store, root := newTestStore(t)
	docPath := filepath.Join(root, "library.json")
	require.NoError(t, os.WriteFile(docPath, []byte("{broken"), 0644))
	// A directory in the way makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(store.BackupPath(), "occupied"), 0755))

	require.Error(t, store.Load())
	assert.Error(t, store.Save())
	_, err := store.SaveScene(Scene{Name: "Lost"})
	require.NoError(t, err)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestDeleteImage_RemovesRecordAndFile(t *testing.T) {
	store, root := newTestStore(t)
	src := writePNG(t, t.TempDir(), "sunset.png")

	img, err := store.ImportFile(src)
	require.NoError(t, err)
	path, err := store.ImagePath(img.ID)
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, store.DeleteImage(img.ID))

	_, ok := store.Image(img.ID)
	assert.False(t, ok)
	assert.NoFileExists(t, path)

	reloaded := NewStore(filepath.Join(root, "library.json"), store.FileManager())
	require.NoError(t, reloaded.Load())
	_, ok = reloaded.Image(img.ID)
	assert.False(t, ok, "deleted image must not be resurrected on reload")
	assert.Equal(t, 0, reloaded.ImageCount())
}

func TestDeleteImage_Unknown(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.DeleteImage("nope")
	assert.True(t, errors.Is(err, ErrImageNotFound))
}

func TestDeleteImage_LeavesDanglingAssignment(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png"}))
	sc, err := store.SaveScene(Scene{Name: "Home", Assignments: map[string]string{"Main": "img1"}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteImage("img1"))

	got, ok := store.Scene(sc.ID)
	require.True(t, ok)
	id, ok := got.Assignment("Main")
	assert.True(t, ok)
	assert.Equal(t, "img1", id)
	assert.Equal(t, []string{"Main"}, store.MissingAssignments(got))
}

func TestSceneAssignment_Verbatim(t *testing.T) {
	store, _ := newTestStore(t)
	sc, err := store.SaveScene(Scene{Name: "Evening"})
	require.NoError(t, err)
	require.NotEmpty(t, sc.ID)

	require.NoError(t, store.SetAssignment(sc.ID, "DELL U2720Q (2)", "image-42"))

	got, ok := store.Scene(sc.ID)
	require.True(t, ok)
	id, ok := got.Assignment("DELL U2720Q (2)")
	assert.True(t, ok)
	assert.Equal(t, "image-42", id)

	_, ok = got.Assignment("Color LCD")
	assert.False(t, ok)

	require.NoError(t, store.ClearAssignment(sc.ID, "DELL U2720Q (2)"))
	got, _ = store.Scene(sc.ID)
	_, ok = got.Assignment("DELL U2720Q (2)")
	assert.False(t, ok)
}

func TestSaveScene_InsertThenUpdate(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SaveScene(Scene{Name: "   "})
	assert.Error(t, err)

	sc, err := store.SaveScene(Scene{Name: "Focus", Assignments: map[string]string{"a": "1", "b": ""}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, sc.Assignments)

	sc.Name = "Deep Focus"
	sc.SetForAllDesktops = true
	_, err = store.SaveScene(sc)
	require.NoError(t, err)

	scenes := store.Scenes()
	require.Len(t, scenes, 1)
	assert.Equal(t, "Deep Focus", scenes[0].Name)
	assert.True(t, scenes[0].SetForAllDesktops)
}

func TestSceneCopiesAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	sc, err := store.SaveScene(Scene{Name: "A", Assignments: map[string]string{"d": "1"}})
	require.NoError(t, err)

	sc.Assignments["d"] = "mutated"
	got, _ := store.Scene(sc.ID)
	assert.Equal(t, "1", got.Assignments["d"])
}

func TestDeleteScenes_Bulk(t *testing.T) {
	store, _ := newTestStore(t)
	a, _ := store.SaveScene(Scene{Name: "A"})
	b, _ := store.SaveScene(Scene{Name: "B"})
	c, _ := store.SaveScene(Scene{Name: "C"})

	err := store.DeleteScenes([]string{a.ID, c.ID, "missing"})
	assert.True(t, errors.Is(err, ErrSceneNotFound))

	scenes := store.Scenes()
	require.Len(t, scenes, 1)
	assert.Equal(t, b.ID, scenes[0].ID)

	require.NoError(t, store.DeleteScene(b.ID))
	assert.Empty(t, store.Scenes())
}

func TestScenesSortedByName(t *testing.T) {
	store, _ := newTestStore(t)
	_, _ = store.SaveScene(Scene{Name: "zen"})
	_, _ = store.SaveScene(Scene{Name: "Alpha"})
	_, _ = store.SaveScene(Scene{Name: "beta"})

	var names []string
	for _, sc := range store.Scenes() {
		names = append(names, sc.Name)
	}
	assert.Equal(t, []string{"Alpha", "beta", "zen"}, names)
}

func TestImageEdits(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png", DisplayName: "old"}))
	require.NoError(t, store.AddImage(Image{ID: "img2", FileName: "b.png", DisplayName: "other", Groups: []string{"dark"}}))

	require.NoError(t, store.RenameImage("img1", "  New Name "))
	require.NoError(t, store.SetImageGroups("img1", []string{"nature", " ", "nature", "dark"}))
	require.NoError(t, store.AddImageToGroup("img1", "mountains"))
	require.NoError(t, store.RemoveImageFromGroup("img1", "dark"))

	img, _ := store.Image("img1")
	assert.Equal(t, "New Name", img.DisplayName)
	assert.Equal(t, []string{"mountains", "nature"}, img.Groups)

	assert.Equal(t, []string{"dark", "mountains", "nature"}, store.Groups())
	inDark := store.ImagesInGroup("dark")
	require.Len(t, inDark, 1)
	assert.Equal(t, "img2", inDark[0].ID)
	assert.Len(t, store.ImagesInGroup(""), 2)

	assert.True(t, errors.Is(store.RenameImage("ghost", "x"), ErrImageNotFound))
}

func TestAddImage_DuplicateID(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png"}))
	assert.Error(t, store.AddImage(Image{ID: "img1", FileName: "b.png"}))
}

func TestStore_SavesOnEveryMutation(t *testing.T) {
	store, _ := newTestStore(t)
	var saves int32
	store.saveFunc = func() { atomic.AddInt32(&saves, 1) }

	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png"}))
	require.NoError(t, store.RenameImage("img1", "x"))
	_, err := store.SaveScene(Scene{Name: "S"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&saves))
}

func TestStore_ConcurrentSavesKeepDocumentValid(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Save())
		}()
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.RenameImage("img1", fmt.Sprintf("name %d", i)))
		}(i)
	}
	wg.Wait()

	assert.NoFileExists(t, filepath.Join(root, "library.json.tmp"))
	reloaded := NewStore(filepath.Join(root, "library.json"), store.FileManager())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 1, reloaded.ImageCount())
}

func TestStore_UpdateChannel(t *testing.T) {
	store, _ := newTestStore(t)
	ch := store.GetUpdateChannel()

	select {
	case <-ch:
		t.Fatal("channel closed before any change")
	default:
	}

	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "a.png"}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("update channel was not closed after a change")
	}
}

func TestDeleteImage_FileDeleteFailureStillRemovesRecord(t *testing.T) {
	store, _ := newTestStore(t)
	// A non-empty directory under the image's name cannot be removed.
	stuck := filepath.Join(store.FileManager().GetRootDir(), "stuck.png")
	require.NoError(t, os.MkdirAll(filepath.Join(stuck, "inner"), 0755))
	require.NoError(t, store.AddImage(Image{ID: "img1", FileName: "stuck.png"}))

	assert.NoError(t, store.DeleteImage("img1"))
	_, ok := store.Image("img1")
	assert.False(t, ok)
	assert.DirExists(t, stuck)
}
