package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type CVService interface {
	// GenerateCV rebuilds the user's CV snapshot from completed projects and
	// current skills, overwriting any prior snapshot.
	GenerateCV(ctx context.Context, userID uuid.UUID) (*types.CV, error)
	GetCurrentCV(ctx context.Context, userID uuid.UUID) (*types.CV, error)
	// FormatCV renders the current snapshot through the completion service in
	// the requested style and stores the result on the CV row.
	FormatCV(ctx context.Context, userID uuid.UUID, formatType string) (*types.CV, error)
	// RefreshFromProjects is called inside a transaction whenever a project
	// flips to completed, so the snapshot never lags the project list.
	RefreshFromProjects(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type cvProjectEntry struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	RequiredSkills json.RawMessage `json:"required_skills,omitempty"`
	Deliverables   json.RawMessage `json:"deliverables,omitempty"`
	GithubURL      string          `json:"github_url,omitempty"`
}

type cvSkillEntry struct {
	Name     string  `json:"name"`
	Level    float64 `json:"level"`
	Category string  `json:"category"`
}

type cvEducationEntry struct {
	Degree   string `json:"degree"`
	Year     int    `json:"year"`
	Semester int    `json:"semester"`
}

type cvService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	projectRepo repos.ProjectRepo
	skillRepo   repos.SkillRepo
	cvRepo      repos.CVRepo
	completion  CompletionClient
}

func NewCVService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	projectRepo repos.ProjectRepo,
	skillRepo repos.SkillRepo,
	cvRepo repos.CVRepo,
	completion CompletionClient,
) CVService {
	serviceLog := baseLog.With("service", "CVService")
	return &cvService{
		db:          db,
		log:         serviceLog,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		skillRepo:   skillRepo,
		cvRepo:      cvRepo,
		completion:  completion,
	}
}

func (cs *cvService) GenerateCV(ctx context.Context, userID uuid.UUID) (*types.CV, error) {
	var user *types.User
	var projects []*types.Project
	var skills []*types.Skill

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := cs.userRepo.GetByIDs(gctx, nil, []uuid.UUID{userID})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		user = users[0]
		return nil
	})
	g.Go(func() error {
		var err error
		projects, err = cs.projectRepo.GetByUserAndStatus(gctx, nil, userID, types.ProjectStatusCompleted)
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		skills, err = cs.skillRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load skills: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cv, err := buildCVSnapshot(user, projects, skills)
	if err != nil {
		return nil, err
	}
	if err := cs.cvRepo.Upsert(ctx, nil, cv); err != nil {
		return nil, fmt.Errorf("persist cv: %w", err)
	}
	return cs.cvRepo.GetByUserID(ctx, nil, userID)
}

func (cs *cvService) GetCurrentCV(ctx context.Context, userID uuid.UUID) (*types.CV, error) {
	cv, err := cs.cvRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load cv: %w", err)
	}
	if cv == nil {
		return nil, fmt.Errorf("%w: no cv found, generate one first", ErrNotFound)
	}
	return cv, nil
}

func (cs *cvService) FormatCV(ctx context.Context, userID uuid.UUID, formatType string) (*types.CV, error) {
	formatType = strings.ToLower(strings.TrimSpace(formatType))
	if _, ok := cvFormatPrompts[formatType]; !ok {
		formatType = "american"
	}

	cv, err := cs.GetCurrentCV(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := cs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil || len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	user := users[0]

	formatted := cs.formattedCVFromAI(ctx, user, cv, formatType)

	cv.FormattedText = formatted
	cv.FormatType = formatType
	cv.UpdatedAt = time.Now()
	if err := cs.cvRepo.Upsert(ctx, nil, cv); err != nil {
		return nil, fmt.Errorf("persist formatted cv: %w", err)
	}
	return cv, nil
}

func (cs *cvService) RefreshFromProjects(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	users, err := cs.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	projects, err := cs.projectRepo.GetByUserAndStatus(ctx, tx, userID, types.ProjectStatusCompleted)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	skills, err := cs.skillRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	cv, err := buildCVSnapshot(users[0], projects, skills)
	if err != nil {
		return err
	}
	return cs.cvRepo.Upsert(ctx, tx, cv)
}

func buildCVSnapshot(user *types.User, projects []*types.Project, skills []*types.Skill) (*types.CV, error) {
	projectEntries := make([]cvProjectEntry, 0, len(projects))
	for _, p := range projects {
		projectEntries = append(projectEntries, cvProjectEntry{
			Title:          p.Title,
			Description:    p.Description,
			RequiredSkills: json.RawMessage(p.RequiredSkills),
			Deliverables:   json.RawMessage(p.Deliverables),
			GithubURL:      p.GithubURL,
		})
	}
	skillEntries := make([]cvSkillEntry, 0, len(skills))
	for _, s := range skills {
		skillEntries = append(skillEntries, cvSkillEntry{
			Name:     s.Name,
			Level:    s.ProficiencyLevel,
			Category: s.Category,
		})
	}

	projectsJSON, err := json.Marshal(projectEntries)
	if err != nil {
		return nil, fmt.Errorf("marshal projects: %w", err)
	}
	skillsJSON, err := json.Marshal(skillEntries)
	if err != nil {
		return nil, fmt.Errorf("marshal skills: %w", err)
	}
	educationJSON, err := json.Marshal(cvEducationEntry{
		Degree:   user.DegreeProgram,
		Year:     user.CurrentYear,
		Semester: user.CurrentSemester,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal education: %w", err)
	}

	return &types.CV{
		UserID:    user.ID,
		Summary:   fmt.Sprintf("%s student specializing in %s. Passionate about building impactful projects and continuous learning.", user.DegreeProgram, user.CareerGoal),
		Education: datatypes.JSON(educationJSON),
		Skills:    datatypes.JSON(skillsJSON),
		Projects:  datatypes.JSON(projectsJSON),
	}, nil
}

func (cs *cvService) formattedCVFromAI(ctx context.Context, user *types.User, cv *types.CV, formatType string) string {
	var parts []string
	if user.FullName != "" {
		parts = append(parts, fmt.Sprintf("Name: %s", user.FullName))
	}
	if user.Email != "" {
		parts = append(parts, fmt.Sprintf("Email: %s", user.Email))
	}
	if cv.Summary != "" {
		parts = append(parts, fmt.Sprintf("\nProfessional Summary:\n%s", cv.Summary))
	}
	if len(cv.Education) > 0 && string(cv.Education) != "null" {
		parts = append(parts, fmt.Sprintf("\nEducation:\n%s", string(cv.Education)))
	}
	if len(cv.Skills) > 0 && string(cv.Skills) != "null" {
		parts = append(parts, fmt.Sprintf("\nSkills:\n%s", string(cv.Skills)))
	}
	if len(cv.Projects) > 0 && string(cv.Projects) != "null" {
		parts = append(parts, fmt.Sprintf("\nProjects:\n%s", string(cv.Projects)))
	}
	cvInfo := strings.Join(parts, "\n")

	system := fmt.Sprintf("You are an expert CV writer specializing in %s format CVs. Create professional, compelling CVs that highlight candidates' strengths.", formatType)
	prompt := fmt.Sprintf(`%s

CV Data (ONLY use the information provided below - do NOT add any dummy, placeholder, or fictional data):
%s

IMPORTANT INSTRUCTIONS:
1. Generate a professionally formatted CV in plain text that can be easily converted to PDF.
2. Use clear headers, proper spacing, and professional language.
3. Focus on making the candidate's experience and skills stand out.
4. ONLY include sections that have actual data provided above.
5. DO NOT add any dummy data, placeholder text, or fictional information.
6. If a section is not provided in the data above, DO NOT include that section or label at all.
7. Skip any fields that are empty or missing - do not show the label for missing fields.
8. Return ONLY the formatted CV text, no explanations or metadata.`, cvFormatPrompts[formatType], cvInfo)

	text, err := cs.completion.GenerateText(ctx, system, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		cs.log.Warn("cv formatting degraded, returning raw snapshot", "format", formatType, "error", err)
		return cvInfo
	}
	return strings.TrimSpace(text)
}

var cvFormatPrompts = map[string]string{
	"american": `Format this CV in the traditional American resume style:
- Clean, professional layout
- Start with name and contact info
- Professional Summary section
- Work Experience (reverse chronological, with bullet points)
- Education (degree, institution, year)
- Skills section (categorized)
- Projects section (with descriptions)
- Certifications (if applicable)
- Keep it to 1-2 pages worth of content
- Use action verbs and quantifiable achievements
- ATS-friendly formatting (no tables, simple structure)`,

	"european": `Format this CV in the Europass CV style:
- Personal Information section at top (name, address, phone, email)
- Professional Profile/Summary
- Work Experience (reverse chronological, detailed descriptions)
- Education and Training (with grades/achievements)
- Personal Skills (language skills with proficiency levels)
- Technical/Digital Skills
- Projects and Publications
- Certifications and Additional Information
- More detailed and comprehensive than American style
- Include language proficiency levels (A1-C2 if mentioned)`,

	"ats": `Format this CV optimized for Applicant Tracking Systems (ATS) with clean, professional formatting:
- Name at top in large bold text
- Contact information below name
- Clear section headers in ALL CAPS: EDUCATION, SKILLS, WORK EXPERIENCE, PROJECTS, COURSES AND CERTIFICATIONS
- Use bullet points for all list items
- Bold text for job titles, company names, degree names, project titles
- Clean single-column layout
- NO colors, NO graphics, NO tables - pure text formatting only
- Use industry keywords relevant to the role
- Start bullet points with strong action verbs
- Quantify achievements with numbers/percentages where possible
- Use standard section names that ATS systems recognize`,

	"modern": `Format this CV in a modern, creative style:
- Contemporary design elements (while keeping it professional)
- Strategic use of whitespace
- Skills highlighted prominently
- Project portfolio showcase
- Modern section names (e.g., "What I Bring", "My Journey")
- Personality and passion evident
- Tech-focused with links to GitHub, portfolio
- Emphasis on projects and hands-on experience
- Brief but impactful descriptions
- Modern tech stack and tools prominently featured`,

	"academic": `Format this CV in academic CV style:
- Comprehensive and detailed (can be multiple pages)
- Education section first (with thesis/dissertation topics if applicable)
- Research Experience and Publications
- Teaching Experience
- Certifications and Professional Development
- Academic Projects and Research
- Technical Skills and Laboratory Competencies
- Presentations and Conferences
- Honors and Awards
- Professional Memberships
- Detailed descriptions of research and academic work
- Focus on scholarly achievements and contributions`,
}
