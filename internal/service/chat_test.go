package service

import (
	"context"
	"testing"

	"github.com/studyhall/studyhall/internal/enrollment"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/user"
)

func newChatFixture(t *testing.T) (*ChatService, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	return NewChatService(store, store, store), store
}

func TestCanAccess(t *testing.T) {
	svc, store := newChatFixture(t)
	instructor := store.addUser(user.RoleInstructor, "ada")
	active := store.addUser(user.RoleStudent, "grace")
	pending := store.addUser(user.RoleStudent, "alan")
	dropped := store.addUser(user.RoleStudent, "edsger")
	outsider := store.addUser(user.RoleStudent, "mallory")
	course := store.addCourse("Algebra", instructor.ID)
	store.addEnrollment(active.ID, course.ID, enrollment.StatusActive)
	store.addEnrollment(pending.ID, course.ID, enrollment.StatusPending)
	store.addEnrollment(dropped.ID, course.ID, enrollment.StatusDropped)

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"instructor", instructor.ID, true},
		{"active student", active.ID, true},
		{"pending student", pending.ID, false},
		{"dropped student", dropped.ID, false},
		{"no enrollment", outsider.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanAccess(context.Background(), tt.userID, course.ID)
			if err != nil {
				t.Fatalf("CanAccess: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanAccess = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := svc.CanAccess(context.Background(), instructor.ID, 999); apperrors.GetCode(err) != apperrors.CodeCourseNotFound {
		t.Errorf("code = %s, want %s", apperrors.GetCode(err), apperrors.CodeCourseNotFound)
	}
}

func TestSendPersistsAndResolvesRecipients(t *testing.T) {
	svc, store := newChatFixture(t)
	instructor := store.addUser(user.RoleInstructor, "ada")
	active := store.addUser(user.RoleStudent, "grace")
	other := store.addUser(user.RoleStudent, "alan")
	dropped := store.addUser(user.RoleStudent, "edsger")
	course := store.addCourse("Algebra", instructor.ID)
	store.addEnrollment(active.ID, course.ID, enrollment.StatusActive)
	store.addEnrollment(other.ID, course.ID, enrollment.StatusActive)
	store.addEnrollment(dropped.ID, course.ID, enrollment.StatusDropped)

	message, recipients, err := svc.Send(context.Background(), active.ID, course.ID, " hello ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if message.Text != "hello" {
		t.Errorf("text = %q, want %q", message.Text, "hello")
	}
	if message.AuthorID != active.ID || message.AuthorUsername != "grace" {
		t.Errorf("message = %+v", message)
	}
	if message.CourseID != course.ID {
		t.Errorf("course = %d, want %d", message.CourseID, course.ID)
	}

	want := map[int64]bool{instructor.ID: true, active.ID: true, other.ID: true}
	if len(recipients) != len(want) {
		t.Fatalf("recipients = %v, want %v", recipients, want)
	}
	for _, id := range recipients {
		if !want[id] {
			t.Errorf("unexpected recipient %d", id)
		}
	}
}

func TestSendAuthorization(t *testing.T) {
	svc, store := newChatFixture(t)
	instructor := store.addUser(user.RoleInstructor, "ada")
	pending := store.addUser(user.RoleStudent, "alan")
	course := store.addCourse("Algebra", instructor.ID)
	store.addEnrollment(pending.ID, course.ID, enrollment.StatusPending)

	if _, _, err := svc.Send(context.Background(), pending.ID, course.ID, "hi"); apperrors.GetCode(err) != apperrors.CodeChatSendForbidden {
		t.Errorf("code = %s, want %s", apperrors.GetCode(err), apperrors.CodeChatSendForbidden)
	}
	if _, _, err := svc.Send(context.Background(), instructor.ID, course.ID, "   "); apperrors.GetCode(err) != apperrors.CodeInvalidArgument {
		t.Errorf("code = %s, want %s", apperrors.GetCode(err), apperrors.CodeInvalidArgument)
	}
}

func TestSendReusesConversation(t *testing.T) {
	svc, store := newChatFixture(t)
	instructor := store.addUser(user.RoleInstructor, "ada")
	course := store.addCourse("Algebra", instructor.ID)

	first, _, err := svc.Send(context.Background(), instructor.ID, course.ID, "one")
	if err != nil {
		t.Fatalf("first Send: %v", err)
	}
	second, _, err := svc.Send(context.Background(), instructor.ID, course.ID, "two")
	if err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if first.ConversationID != second.ConversationID {
		t.Errorf("conversations differ: %d vs %d", first.ConversationID, second.ConversationID)
	}
	if len(store.conversations) != 1 {
		t.Errorf("conversations = %d, want 1", len(store.conversations))
	}
}

func TestMessagesOrderedHistory(t *testing.T) {
	svc, store := newChatFixture(t)
	instructor := store.addUser(user.RoleInstructor, "ada")
	active := store.addUser(user.RoleStudent, "grace")
	outsider := store.addUser(user.RoleStudent, "mallory")
	course := store.addCourse("Algebra", instructor.ID)
	store.addEnrollment(active.ID, course.ID, enrollment.StatusActive)

	for _, text := range []string{"one", "two", "three"} {
		if _, _, err := svc.Send(context.Background(), active.ID, course.ID, text); err != nil {
			t.Fatalf("Send %q: %v", text, err)
		}
	}

	messages, err := svc.Messages(context.Background(), instructor.ID, course.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(messages))
	}
	for i, want := range []string{"one", "two", "three"} {
		if messages[i].Text != want {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i].Text, want)
		}
	}

	if _, err := svc.Messages(context.Background(), outsider.ID, course.ID); apperrors.GetCode(err) != apperrors.CodeRoomJoinForbidden {
		t.Errorf("code = %s, want %s", apperrors.GetCode(err), apperrors.CodeRoomJoinForbidden)
	}
}
