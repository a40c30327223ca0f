package event

import (
	"testing"
	"time"
)

func TestBusPublishDeliversToTypeSubscribers(t *testing.T) {
	bus := NewBus()

	var got []Type
	bus.Subscribe(TypeCourseCreated, func(e Event) {
		got = append(got, e.Type)
	})
	bus.Subscribe(TypeCourseDeleted, func(e Event) {
		t.Errorf("unexpected delivery of %s to COURSE_DELETED subscriber", e.Type)
	})

	bus.Publish(New(1, time.Now(), CourseCreatedPayload{
		Course: CourseSnapshot{ID: 7, Title: "Algebra", InstructorID: 1},
	}))

	if len(got) != 1 || got[0] != TypeCourseCreated {
		t.Errorf("deliveries = %v, want [%s]", got, TypeCourseCreated)
	}
}

func TestBusPublishRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(TypeStudentEnrolledInCourse, func(Event) {
			order = append(order, i)
		})
	}

	bus.Publish(New(2, time.Now(), StudentEnrolledPayload{EnrollmentID: 1, CourseID: 7, StudentID: 2}))

	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("deliveries = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("deliveries = %v, want %v", order, want)
		}
	}
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	calls := 0
	unsubscribe := bus.Subscribe(TypeCourseCreated, func(Event) { calls++ })

	e := New(1, time.Now(), CourseCreatedPayload{Course: CourseSnapshot{ID: 1}})
	bus.Publish(e)
	unsubscribe()
	unsubscribe() // safe to call again
	bus.Publish(e)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBusUnsubscribeDuringDelivery(t *testing.T) {
	bus := NewBus()

	var unsubscribe func()
	first := 0
	unsubscribe = bus.Subscribe(TypeCourseCreated, func(Event) {
		first++
		unsubscribe()
	})
	second := 0
	bus.Subscribe(TypeCourseCreated, func(Event) { second++ })

	e := New(1, time.Now(), CourseCreatedPayload{Course: CourseSnapshot{ID: 1}})
	bus.Publish(e)
	bus.Publish(e)

	if first != 1 {
		t.Errorf("first subscriber calls = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("second subscriber calls = %d, want 2", second)
	}
}

func TestBusSubscribeAllReceivesEveryType(t *testing.T) {
	bus := NewBus()

	seen := make(map[Type]int)
	unsubscribe := bus.SubscribeAll(func(e Event) {
		seen[e.Type]++
	})

	now := time.Now()
	payloads := []Payload{
		CourseCreatedPayload{},
		CourseUpdatedPayload{},
		CourseDeletedPayload{},
		InstructorInvitedStudentPayload{},
		InstructorKickedStudentPayload{},
		InstructorCompletedCoursePayload{},
		StudentEnrolledPayload{},
		StudentDroppedPayload{},
		StudentRejectedPayload{},
	}
	for _, p := range payloads {
		bus.Publish(New(1, now, p))
	}

	for _, typ := range Types() {
		if seen[typ] != 1 {
			t.Errorf("deliveries for %s = %d, want 1", typ, seen[typ])
		}
	}

	unsubscribe()
	bus.Publish(New(1, now, CourseCreatedPayload{}))
	if seen[TypeCourseCreated] != 1 {
		t.Errorf("deliveries for %s after unsubscribe = %d, want 1", TypeCourseCreated, seen[TypeCourseCreated])
	}
}
