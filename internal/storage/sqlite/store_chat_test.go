package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studyhall/studyhall/internal/storage"
)

func TestGetOrCreateConversationIsStable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, course := seedCourse(t, store)

	first, err := store.GetOrCreateConversation(ctx, course.ID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := store.GetOrCreateConversation(ctx, course.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("conversation ids differ: %d vs %d", first.ID, second.ID)
	}
	if first.CourseID != course.ID {
		t.Errorf("course = %d, want %d", first.CourseID, course.ID)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	instructor, course := seedCourse(t, store)
	student := seedStudent(t, store, "grace")

	conversation, err := store.GetOrCreateConversation(ctx, course.ID)
	if err != nil {
		t.Fatalf("resolve conversation: %v", err)
	}

	first, err := store.CreateMessage(ctx, conversation.ID, instructor.ID, "welcome")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if first.AuthorUsername != "ada" {
		t.Errorf("author = %q, want %q", first.AuthorUsername, "ada")
	}
	if first.CourseID != course.ID {
		t.Errorf("course = %d, want %d", first.CourseID, course.ID)
	}
	if first.CreatedAt.IsZero() || time.Since(first.CreatedAt) > time.Minute {
		t.Errorf("created_at = %v", first.CreatedAt)
	}

	if _, err := store.CreateMessage(ctx, conversation.ID, student.ID, "thanks"); err != nil {
		t.Fatalf("create second message: %v", err)
	}

	messages, err := store.ListMessages(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if messages[0].Text != "welcome" || messages[1].Text != "thanks" {
		t.Errorf("messages out of order: %q, %q", messages[0].Text, messages[1].Text)
	}
	if messages[1].AuthorUsername != "grace" {
		t.Errorf("author = %q, want %q", messages[1].AuthorUsername, "grace")
	}
}

func TestCourseDeleteCascadesConversation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	instructor, course := seedCourse(t, store)

	conversation, err := store.GetOrCreateConversation(ctx, course.ID)
	if err != nil {
		t.Fatalf("resolve conversation: %v", err)
	}
	if _, err := store.CreateMessage(ctx, conversation.ID, instructor.ID, "hello"); err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := store.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}

	messages, err := store.ListMessages(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("messages = %d, want 0", len(messages))
	}
	if _, err := store.getConversation(ctx, course.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("conversation error = %v, want ErrNotFound", err)
	}
}
