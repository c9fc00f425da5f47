package projects

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ projectsRepo = (*repoMock)(nil)

type repoMock struct {
	Projects map[int]*Project
	nextID   int
	mutex    sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Projects: make(map[int]*Project),
		nextID:   1,
	}
}

func (r *repoMock) sorted(filterFeatured bool) []Project {
	projects := []Project{}
	for _, p := range r.Projects {
		if filterFeatured && !p.Featured {
			continue
		}
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].DisplayOrder != projects[j].DisplayOrder {
			return projects[i].DisplayOrder < projects[j].DisplayOrder
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects
}

func (r *repoMock) GetAll(_ context.Context) ([]Project, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(false), nil
}

func (r *repoMock) GetFeatured(_ context.Context) ([]Project, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(true), nil
}

func (r *repoMock) GetByID(_ context.Context, id int) (*Project, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if p, ok := r.Projects[id]; ok {
		project := *p
		return &project, nil
	}
	return nil, ErrProjectNotFound
}

func (r *repoMock) Create(_ context.Context, newProject NewProject) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := r.nextID
	r.nextID++
	technologies := newProject.Technologies
	if technologies == nil {
		technologies = []string{}
	}
	r.Projects[id] = &Project{
		ID:           id,
		Title:        newProject.Title,
		Description:  newProject.Description,
		Problem:      newProject.Problem,
		Solution:     newProject.Solution,
		Result:       newProject.Result,
		ImageURL:     newProject.ImageURL,
		ProjectURL:   newProject.ProjectURL,
		GithubURL:    newProject.GithubURL,
		Featured:     newProject.Featured,
		DisplayOrder: newProject.DisplayOrder,
		Technologies: technologies,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return id, nil
}

func (r *repoMock) Update(_ context.Context, id int, update ProjectUpdate) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	project, ok := r.Projects[id]
	if !ok {
		return ErrProjectNotFound
	}

	if update.Title != nil {
		project.Title = *update.Title
	}
	if update.Description != nil {
		project.Description = *update.Description
	}
	if update.Problem != nil {
		project.Problem = update.Problem
	}
	if update.Solution != nil {
		project.Solution = update.Solution
	}
	if update.Result != nil {
		project.Result = update.Result
	}
	if update.ImageURL != nil {
		project.ImageURL = update.ImageURL
	}
	if update.ProjectURL != nil {
		project.ProjectURL = update.ProjectURL
	}
	if update.GithubURL != nil {
		project.GithubURL = update.GithubURL
	}
	if update.Featured != nil {
		project.Featured = *update.Featured
	}
	if update.DisplayOrder != nil {
		project.DisplayOrder = *update.DisplayOrder
	}
	if update.Technologies != nil {
		project.Technologies = *update.Technologies
	}
	project.UpdatedAt = time.Now()
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.Projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(r.Projects, id)
	return nil
}
