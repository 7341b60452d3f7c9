package models

import "time"

// Session is anonymous per-client state: favorites and rating history
type Session struct {
	ID        string        `bson:"_id" json:"id"`
	Favorites []int64       `bson:"favorites" json:"favorites"`
	Ratings   []RatingEntry `bson:"ratings" json:"ratings"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// RatingEntry records one rating submitted from a session
type RatingEntry struct {
	RecipeID int64     `bson:"recipe_id" json:"recipe_id"`
	Rating   int       `bson:"rating" json:"rating"`
	RatedAt  time.Time `bson:"rated_at" json:"rated_at"`
}

// HasFavorite reports whether recipeID is in the session's favorites
func (s *Session) HasFavorite(recipeID int64) bool {
	for _, id := range s.Favorites {
		if id == recipeID {
			return true
		}
	}
	return false
}
