package entity

import (
	"time"
)

type User struct {
	UID         string    `json:"uid" firestore:"uid"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	Email       string    `json:"email" firestore:"email"`
	PhotoURL    string    `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	LastSeen    time.Time `json:"last_seen" firestore:"lastSeen"`

	// FCM registration token, empty when the client never registered for push
	FCMToken string `json:"-" firestore:"fcmToken,omitempty"`
}
