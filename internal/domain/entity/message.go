package entity

import "time"

// Message is a single direct message. Exactly one of Text/MediaURL is set.
// Seen is a three-state field: false on text sends, flipped to true once by
// the receiver, and absent entirely on media sends (media is not tracked as
// unseen). Messages are immutable apart from that one transition.
type Message struct {
	ID           string    `json:"id" firestore:"id"`
	SenderID     string    `json:"sender_id" firestore:"senderId"`
	ReceiverID   string    `json:"receiver_id" firestore:"receiverId"`
	SenderName   string    `json:"sender_name" firestore:"senderName"`
	Participants []string  `json:"participants" firestore:"participants"`
	Text         string    `json:"text,omitempty" firestore:"text,omitempty"`
	MediaURL     string    `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	Timestamp    time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	Seen         *bool     `json:"seen,omitempty" firestore:"seen,omitempty"`
}

// IsMedia reports whether this is a media message.
func (m *Message) IsMedia() bool {
	return m.MediaURL != ""
}

// Unseen reports whether the message counts toward the receiver's unseen
// total. Media messages never do.
func (m *Message) Unseen() bool {
	return m.Seen != nil && !*m.Seen
}

// BelongsTo reports whether the message is part of the conversation between
// a and b, treating the participant pair as unordered.
func (m *Message) BelongsTo(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func Bool(v bool) *bool {
	return &v
}
