package services

import (
	"bytes"
	"testing"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/pkg/apperr"
)

func TestWeightMiB(t *testing.T) {
	cases := []struct {
		size     int
		expected float64
	}{
		{0, 0},
		{1 << 20, 1.00},
		{3 << 19, 1.50},
		{5242, 0.00}, // just below the half-hundredth boundary
		{5243, 0.01}, // just above, rounds up
		{100 << 20, 100.00},
	}
	for _, tc := range cases {
		if got := WeightMiB(tc.size); got != tc.expected {
			t.Errorf("WeightMiB(%d) = %v, expected %v", tc.size, got, tc.expected)
		}
	}
}

func TestNormalizeProjectType(t *testing.T) {
	cases := []struct {
		ext   string
		want  string
		valid bool
	}{
		{"ourp", "ourp", true},
		{"TXT", "txt", true},
		{".png", "png", true},
		{"  jpeg ", "jpeg", true},
		{"exe", "exe", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := models.NormalizeProjectType(tc.ext)
		if got != tc.want || ok != tc.valid {
			t.Errorf("NormalizeProjectType(%q) = (%q, %v), expected (%q, %v)",
				tc.ext, got, ok, tc.want, tc.valid)
		}
	}
}

func newProjectFixture(t *testing.T) (*ProjectService, *FriendshipService, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	return NewProjectService(db), NewFriendshipService(db), createTestUser(t, db, ""), createTestUser(t, db, "")
}

func makeFriends(t *testing.T, friends *FriendshipService, a, b uint) {
	t.Helper()
	if _, err := friends.RequestOrAccept(a, b); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := friends.RequestOrAccept(b, a); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
}

func TestProjectCreateAndDownload(t *testing.T) {
	svc, _, owner, _ := newProjectFixture(t)

	payload := []byte("solid model data")
	project, err := svc.Create(&CreateProjectRequest{
		OwnerID:   owner.ID,
		Name:      "bracket",
		Data:      payload,
		Extension: "OURP",
		Private:   true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if project.Type != "ourp" {
		t.Errorf("type = %q, expected ourp", project.Type)
	}

	result, err := svc.Download(owner.ID, project.ID)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if result.Filename != "bracket.ourp" {
		t.Errorf("filename = %q, expected bracket.ourp", result.Filename)
	}
	if !bytes.Equal(result.Data, payload) {
		t.Error("downloaded payload differs from upload")
	}
}

func TestProjectCreate_PrivacyStored(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	owner := createTestUser(t, db, "")

	public, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "public", Data: []byte("x"), Extension: "ourp", Private: false,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var stored models.Project
	if err := db.First(&stored, public.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Private {
		t.Error("project created as public was stored private")
	}

	private, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "private", Data: []byte("x"), Extension: "ourp", Private: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stored = models.Project{}
	if err := db.First(&stored, private.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !stored.Private {
		t.Error("project created as private was stored public")
	}
}

func TestProjectCreate_Validation(t *testing.T) {
	svc, _, owner, _ := newProjectFixture(t)

	cases := []struct {
		name string
		req  CreateProjectRequest
	}{
		{"empty name", CreateProjectRequest{OwnerID: owner.ID, Name: "  ", Data: []byte("x"), Extension: "txt"}},
		{"empty payload", CreateProjectRequest{OwnerID: owner.ID, Name: "p", Extension: "txt"}},
		{"bad extension", CreateProjectRequest{OwnerID: owner.ID, Name: "p", Data: []byte("x"), Extension: "exe"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(&tc.req); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestProjectCreate_SizeCeiling(t *testing.T) {
	svc, _, owner, _ := newProjectFixture(t)

	// Exactly at the ceiling passes.
	data := make([]byte, maxProjectBytes)
	if _, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "big", Data: data, Extension: "ourp",
	}); err != nil {
		t.Fatalf("payload at the limit should pass, got %v", err)
	}

	// One byte over fails before any rounding could mask it.
	data = make([]byte, maxProjectBytes+1)
	if _, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "too big", Data: data, Extension: "ourp",
	}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("payload over the limit should fail validation, got %v", err)
	}
}

func TestProjectUpdate_VersionChain(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	owner := createTestUser(t, db, "")

	project, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "gear", Data: []byte("v1"), Extension: "ourp",
	})
	if err != nil {
		t.Fatal(err)
	}

	// New payload appends a version.
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: owner.ID, ProjectID: project.ID, Data: []byte("v2"),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	versions, err := svc.Versions(owner.ID, project.ID)
	if err != nil {
		t.Fatalf("versions failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}

	// Newest first; download serves the newest payload.
	result, err := svc.Download(owner.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(result.Data, []byte("v2")) {
		t.Error("download should serve the newest version")
	}

	// Name-only change edits the newest version in place.
	name := "gearbox"
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: owner.ID, ProjectID: project.ID, Name: &name,
	}); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if n := countRows(t, db, &models.ProjectVersion{}, "project_id = ?", project.ID); n != 2 {
		t.Errorf("rename should not add a version, got %d rows", n)
	}
	result, _ = svc.Download(owner.ID, project.ID)
	if result.Filename != "gearbox.ourp" {
		t.Errorf("filename = %q, expected gearbox.ourp", result.Filename)
	}
}

func TestProjectUpdate_ChangeLogging(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	owner := createTestUser(t, db, "")

	project, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "sketch", Data: []byte("v1"), Extension: "ourp",
	})
	if err != nil {
		t.Fatal(err)
	}
	base := countRows(t, db, &models.ProjectChange{}, "project_id = ?", project.ID)

	// A no-op update records nothing.
	if _, err := svc.Update(&UpdateProjectRequest{ActorID: owner.ID, ProjectID: project.ID}); err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, db, &models.ProjectChange{}, "project_id = ?", project.ID); n != base {
		t.Errorf("no-op update recorded a change, got %d rows (base %d)", n, base)
	}

	// An explicit note is recorded verbatim even without field changes.
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: owner.ID, ProjectID: project.ID, Note: "reviewed dimensions",
	}); err != nil {
		t.Fatal(err)
	}
	history, err := svc.History(owner.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if history[0].Description != "reviewed dimensions" {
		t.Errorf("latest change = %q, expected the explicit note", history[0].Description)
	}

	// A field change without a note gets a generated summary.
	private := false
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: owner.ID, ProjectID: project.ID, Private: &private,
	}); err != nil {
		t.Fatal(err)
	}
	history, _ = svc.History(owner.ID, project.ID)
	if history[0].Description == "" {
		t.Error("field change should generate a change description")
	}
}

func TestProjectShare_Gates(t *testing.T) {
	svc, friends, owner, recipient := newProjectFixture(t)

	project, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "plan", Data: []byte("x"), Extension: "pdf", Private: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Private project cannot be shared.
	if _, err := svc.Share(owner.ID, project.ID, recipient.ID, ""); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("sharing a private project should be forbidden, got %v", err)
	}

	private := false
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: owner.ID, ProjectID: project.ID, Private: &private,
	}); err != nil {
		t.Fatal(err)
	}

	// Public but not friends yet.
	if _, err := svc.Share(owner.ID, project.ID, recipient.ID, ""); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("sharing with a non-friend should be forbidden, got %v", err)
	}

	// No self-sharing.
	if _, err := svc.Share(owner.ID, project.ID, owner.ID, ""); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("self-share should be forbidden, got %v", err)
	}

	makeFriends(t, friends, owner.ID, recipient.ID)

	// Only the owner can share.
	if _, err := svc.Share(recipient.ID, project.ID, owner.ID, ""); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("non-owner share should be forbidden, got %v", err)
	}

	sharedID, err := svc.Share(owner.ID, project.ID, recipient.ID, "take a look")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if sharedID == 0 {
		t.Error("share should return the grant id")
	}

	received, err := svc.ListReceived(recipient.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(received) != 1 || received[0].Comment != "take a look" {
		t.Errorf("received = %+v, expected one grant with comment", received)
	}
}

func TestProjectAccess_GrantAndStranger(t *testing.T) {
	svc, friends, owner, friend := newProjectFixture(t)

	project, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "part", Data: []byte("x"), Extension: "ourp", Private: false,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Friendship alone does not grant content access.
	makeFriends(t, friends, owner.ID, friend.ID)
	if _, err := svc.Download(friend.ID, project.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("download without a grant should be forbidden, got %v", err)
	}

	if _, err := svc.Share(owner.ID, project.ID, friend.ID, ""); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Download(friend.ID, project.ID); err != nil {
		t.Errorf("grant holder download failed: %v", err)
	}
	if _, err := svc.History(friend.ID, project.ID); err != nil {
		t.Errorf("grant holder history failed: %v", err)
	}
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: friend.ID, ProjectID: project.ID, Data: []byte("rev"),
	}); err != nil {
		t.Errorf("grant holder update failed: %v", err)
	}
}

func TestProjectUnshare(t *testing.T) {
	svc, friends, owner, recipient := newProjectFixture(t)

	project, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "p", Data: []byte("x"), Extension: "ourp", Private: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	makeFriends(t, friends, owner.ID, recipient.ID)
	sharedID, err := svc.Share(owner.ID, project.ID, recipient.ID, "")
	if err != nil {
		t.Fatal(err)
	}

	// Only the receiver can remove the grant.
	if err := svc.Unshare(owner.ID, sharedID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("owner unshare should be forbidden, got %v", err)
	}

	if err := svc.Unshare(recipient.ID, sharedID); err != nil {
		t.Fatalf("unshare failed: %v", err)
	}
	// The grant is gone; a repeat is not found.
	if err := svc.Unshare(recipient.ID, sharedID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("second unshare should be not found, got %v", err)
	}
}

func TestProjectListVisible(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	friends := NewFriendshipService(db)
	owner := createTestUser(t, db, "")
	friend := createTestUser(t, db, "")
	stranger := createTestUser(t, db, "")

	if _, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "secret", Data: []byte("x"), Extension: "ourp", Private: true,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "open", Data: []byte("x"), Extension: "ourp", Private: false,
	}); err != nil {
		t.Fatal(err)
	}
	makeFriends(t, friends, owner.ID, friend.ID)

	own, err := svc.ListVisible(owner.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 2 {
		t.Errorf("owner should see 2 projects, got %d", len(own))
	}

	asFriend, err := svc.ListVisible(owner.ID, friend.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(asFriend) != 2 {
		t.Errorf("friend should see 2 projects, got %d", len(asFriend))
	}

	asStranger, err := svc.ListVisible(owner.ID, stranger.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(asStranger) != 1 || asStranger[0].Name != "open" {
		t.Errorf("stranger should see only the public project, got %+v", asStranger)
	}

	// Listings fall back to a placeholder when no change record exists.
	db.Where("1 = 1").Delete(&models.ProjectChange{})
	own, err = svc.ListVisible(owner.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if own[0].Description != "no description" {
		t.Errorf("description = %q, expected the placeholder", own[0].Description)
	}
}

func TestProjectDelete_Cascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	friends := NewFriendshipService(db)
	owner := createTestUser(t, db, "")
	recipient := createTestUser(t, db, "")

	project, err := svc.Create(&CreateProjectRequest{
		OwnerID: owner.ID, Name: "doomed", Data: []byte("v1"), Extension: "ourp", Private: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(&UpdateProjectRequest{
		ActorID: owner.ID, ProjectID: project.ID, Data: []byte("v2"),
	}); err != nil {
		t.Fatal(err)
	}
	makeFriends(t, friends, owner.ID, recipient.ID)
	if _, err := svc.Share(owner.ID, project.ID, recipient.ID, ""); err != nil {
		t.Fatal(err)
	}

	// A share grant does not allow deletion.
	if err := svc.Delete(recipient.ID, project.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("non-owner delete should be forbidden, got %v", err)
	}

	if err := svc.Delete(owner.ID, project.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"versions", &models.ProjectVersion{}},
		{"changes", &models.ProjectChange{}},
		{"shares", &models.Shared{}},
	} {
		if n := countRows(t, db, check.model, "project_id = ?", project.ID); n != 0 {
			t.Errorf("delete left %d orphan %s", n, check.name)
		}
	}

	if _, err := svc.Download(owner.ID, project.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("download after delete should be not found, got %v", err)
	}
}
