package handlers_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for every repository. It counts the calls it serves.
type memStore struct {
	mu       sync.Mutex
	queries  int
	nextID   uint
	clock    time.Time
	users    map[uint]models.User
	groups   map[uint]models.Group
	posts    map[uint]models.Post
	comments []models.Comment
	follows  []models.Follow
}

var (
	_ repositories.UserRepository    = (*memStore)(nil)
	_ repositories.GroupRepository   = (*memStore)(nil)
	_ repositories.PostRepository    = (*memStore)(nil)
	_ repositories.CommentRepository = (*memStore)(nil)
	_ repositories.FollowRepository  = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		clock:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:  map[uint]models.User{},
		groups: map[uint]models.Group{},
		posts:  map[uint]models.Post{},
	}
}

func (s *memStore) begin() {
	s.mu.Lock()
	s.queries++
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

// tick returns strictly increasing timestamps so creation order is publication order.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *memStore) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func (s *memStore) CreateUser(ctx context.Context, user *models.User) error {
	s.begin()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.tick()
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) findUser(match func(models.User) bool) (*models.User, error) {
	for _, u := range s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.begin()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

func (s *memStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.begin()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *memStore) ListUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	s.begin()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	s.begin()
	defer s.mu.Unlock()
	return s.findUser(func(u models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID })
}

func (s *memStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.begin()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) DeleteUserByUsername(ctx context.Context, username string) error {
	s.begin()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Username == username {
			delete(s.users, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memStore) CreateGroup(ctx context.Context, group *models.Group) error {
	s.begin()
	defer s.mu.Unlock()
	group.ID = s.id()
	s.groups[group.ID] = *group
	return nil
}

func (s *memStore) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	s.begin()
	defer s.mu.Unlock()
	if g, ok := s.groups[id]; ok {
		return &g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	s.begin()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Slug == slug {
			g := g
			return &g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	s.begin()
	defer s.mu.Unlock()
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *memStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.begin()
	defer s.mu.Unlock()
	post.ID = s.id()
	post.PubDate = s.tick()
	s.posts[post.ID] = *post
	return nil
}

func (s *memStore) UpdatePost(ctx context.Context, post *models.Post) error {
	s.begin()
	defer s.mu.Unlock()
	stored, ok := s.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Text, stored.GroupID, stored.Image = post.Text, post.GroupID, post.Image
	s.posts[post.ID] = stored
	return nil
}

// withRelations fills Author and Group the way Preload does.
func (s *memStore) withRelations(p models.Post) models.Post {
	p.Author = s.users[p.AuthorID]
	p.Group = nil
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			p.Group = &g
		}
	}
	return p
}

func (s *memStore) GetPostByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	s.begin()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || s.users[p.AuthorID].Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	p = s.withRelations(p)
	return &p, nil
}

func (s *memStore) filtered(filter repositories.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range s.posts {
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.FollowerID != nil && !s.isFollower(*filter.FollowerID, p.AuthorID) {
			continue
		}
		out = append(out, s.withRelations(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].PubDate.After(out[j].PubDate)
	})
	return out
}

func (s *memStore) isFollower(userID, authorID uint) bool {
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return true
		}
	}
	return false
}

func (s *memStore) ListPosts(ctx context.Context, filter repositories.PostFilter, offset, limit int) ([]models.Post, error) {
	s.begin()
	defer s.mu.Unlock()
	all := s.filtered(filter)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStore) CountPosts(ctx context.Context, filter repositories.PostFilter) (int64, error) {
	s.begin()
	defer s.mu.Unlock()
	return int64(len(s.filtered(filter))), nil
}

func (s *memStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.begin()
	defer s.mu.Unlock()
	comment.ID = s.id()
	comment.Created = s.tick()
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *memStore) ListCommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	s.begin()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			c.Author = s.users[c.AuthorID]
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) FollowAuthor(ctx context.Context, userID, authorID uint) (bool, error) {
	s.begin()
	defer s.mu.Unlock()
	if s.isFollower(userID, authorID) {
		return false, nil
	}
	s.follows = append(s.follows, models.Follow{ID: s.id(), UserID: userID, AuthorID: authorID})
	return true, nil
}

func (s *memStore) UnfollowAuthor(ctx context.Context, userID uint, authorUsername string) error {
	s.begin()
	defer s.mu.Unlock()
	kept := s.follows[:0]
	for _, f := range s.follows {
		if f.UserID == userID && s.users[f.AuthorID].Username == authorUsername {
			continue
		}
		kept = append(kept, f)
	}
	s.follows = kept
	return nil
}

func (s *memStore) IsFollowing(ctx context.Context, userID uint, authorUsername string) (bool, error) {
	s.begin()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.UserID == userID && s.users[f.AuthorID].Username == authorUsername {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot helpers used by assertions; they do not count as queries.

func (s *memStore) allPosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered(repositories.PostFilter{})
}

func (s *memStore) post(id uint) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[id]
}

func (s *memStore) allComments() []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Comment(nil), s.comments...)
}

func (s *memStore) followCount(userID, authorID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			n++
		}
	}
	return n
}

var errInvalidToken = errors.New("invalid token")

// fakeVerifier accepts the tokens it knows.
type fakeVerifier map[string]*auth.Token

func (v fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if token, ok := v[idToken]; ok {
		return token, nil
	}
	return nil, errInvalidToken
}
