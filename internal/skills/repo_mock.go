package skills

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ skillsRepo = (*repoMock)(nil)

type repoMock struct {
	Categories map[int]*Category
	Skills     map[int]*Skill
	nextID     int
	mutex      sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Categories: make(map[int]*Category),
		Skills:     make(map[int]*Skill),
		nextID:     1,
	}
}

func (r *repoMock) addCategory(name string, displayOrder int) *Category {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	id := r.nextID
	r.nextID++
	category := &Category{
		ID:           id,
		Name:         name,
		DisplayOrder: displayOrder,
		CreatedAt:    time.Now(),
	}
	r.Categories[id] = category
	return category
}

func (r *repoMock) sorted(filterCategory int) []Skill {
	skills := []Skill{}
	for _, s := range r.Skills {
		if filterCategory > 0 && s.CategoryID != filterCategory {
			continue
		}
		skills = append(skills, *s)
	}
	sort.Slice(skills, func(i, j int) bool {
		ci := r.Categories[skills[i].CategoryID]
		cj := r.Categories[skills[j].CategoryID]
		if ci != nil && cj != nil && ci.DisplayOrder != cj.DisplayOrder {
			return ci.DisplayOrder < cj.DisplayOrder
		}
		return skills[i].DisplayOrder < skills[j].DisplayOrder
	})
	return skills
}

func (r *repoMock) GetAll(_ context.Context) ([]Skill, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(0), nil
}

func (r *repoMock) GetByCategory(_ context.Context, categoryID int) ([]Skill, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(categoryID), nil
}

func (r *repoMock) GetByID(_ context.Context, id int) (*Skill, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if s, ok := r.Skills[id]; ok {
		skill := *s
		return &skill, nil
	}
	return nil, ErrSkillNotFound
}

func (r *repoMock) GetCategories(_ context.Context) ([]Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	categories := []Category{}
	for _, c := range r.Categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].DisplayOrder < categories[j].DisplayOrder
	})
	return categories, nil
}

func (r *repoMock) Create(_ context.Context, newSkill NewSkill) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := r.nextID
	r.nextID++
	categoryName := ""
	if c, ok := r.Categories[newSkill.CategoryID]; ok {
		categoryName = c.Name
	}
	r.Skills[id] = &Skill{
		ID:               id,
		CategoryID:       newSkill.CategoryID,
		Name:             newSkill.Name,
		ProficiencyLevel: newSkill.ProficiencyLevel,
		DisplayOrder:     newSkill.DisplayOrder,
		CategoryName:     categoryName,
		CreatedAt:        time.Now(),
	}
	return id, nil
}

func (r *repoMock) Update(_ context.Context, id int, update SkillUpdate) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	skill, ok := r.Skills[id]
	if !ok {
		return ErrSkillNotFound
	}

	if update.CategoryID != nil {
		skill.CategoryID = *update.CategoryID
		if c, found := r.Categories[*update.CategoryID]; found {
			skill.CategoryName = c.Name
		}
	}
	if update.Name != nil {
		skill.Name = *update.Name
	}
	if update.ProficiencyLevel != nil {
		skill.ProficiencyLevel = *update.ProficiencyLevel
	}
	if update.DisplayOrder != nil {
		skill.DisplayOrder = *update.DisplayOrder
	}
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.Skills[id]; !ok {
		return ErrSkillNotFound
	}
	delete(r.Skills, id)
	return nil
}
