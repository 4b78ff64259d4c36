package services

import (
	"libroteca/internal/domain"
	"libroteca/internal/repos"
)

// ContentService serves the public events and blog surfaces.
type ContentService struct {
	Events *repos.EventRepo
	Blog   *repos.BlogRepo
}

func NewContentService(events *repos.EventRepo, blog *repos.BlogRepo) *ContentService {
	return &ContentService{Events: events, Blog: blog}
}

func (s *ContentService) UpcomingEvents() ([]domain.Event, error) {
	return s.Events.ListUpcoming()
}

func (s *ContentService) GetEvent(id string) (domain.Event, error) {
	return s.Events.Get(id)
}

func (s *ContentService) ActivePosts() ([]domain.BlogPost, error) {
	return s.Blog.ListActive()
}

func (s *ContentService) GetPost(id string) (domain.BlogPost, error) {
	return s.Blog.Get(id)
}
