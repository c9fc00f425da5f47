package services

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ servicesRepo = (*repoMock)(nil)

type repoMock struct {
	Services map[int]*Service
	nextID   int
	mutex    sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Services: make(map[int]*Service),
		nextID:   1,
	}
}

func (r *repoMock) sorted(activeOnly bool) []Service {
	services := []Service{}
	for _, s := range r.Services {
		if activeOnly && !s.IsActive {
			continue
		}
		services = append(services, *s)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].DisplayOrder < services[j].DisplayOrder
	})
	return services
}

func (r *repoMock) GetActive(_ context.Context) ([]Service, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(true), nil
}

func (r *repoMock) GetAll(_ context.Context) ([]Service, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(false), nil
}

func (r *repoMock) GetByID(_ context.Context, id int) (*Service, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if s, ok := r.Services[id]; ok {
		service := *s
		return &service, nil
	}
	return nil, ErrServiceNotFound
}

func (r *repoMock) Create(_ context.Context, newService NewService) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := r.nextID
	r.nextID++
	r.Services[id] = &Service{
		ID:           id,
		Title:        newService.Title,
		Description:  newService.Description,
		IconName:     newService.IconName,
		DisplayOrder: newService.DisplayOrder,
		IsActive:     newService.IsActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return id, nil
}

func (r *repoMock) Update(_ context.Context, id int, update ServiceUpdate) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	service, ok := r.Services[id]
	if !ok {
		return ErrServiceNotFound
	}

	if update.Title != nil {
		service.Title = *update.Title
	}
	if update.Description != nil {
		service.Description = *update.Description
	}
	if update.IconName != nil {
		service.IconName = update.IconName
	}
	if update.DisplayOrder != nil {
		service.DisplayOrder = *update.DisplayOrder
	}
	if update.IsActive != nil {
		service.IsActive = *update.IsActive
	}
	service.UpdatedAt = time.Now()
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.Services[id]; !ok {
		return ErrServiceNotFound
	}
	delete(r.Services, id)
	return nil
}
