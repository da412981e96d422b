package service

import (
	"context"
	"database/sql"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unisms/university-api/internal/models"
)

// In-memory stand-ins for the repository layer. Each fake records the
// writes it receives so tests can assert on them.

type fakeUserStore struct {
	users      map[int64]*models.User
	byEmail    map[string]*models.User
	all        []models.User
	roster     []models.User
	taken      bool
	emailTaken bool
	createErr  error
	created    []*models.User
	updates    map[int64]map[string]interface{}
	deleted    []int64
	nextID     int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   map[int64]*models.User{},
		byEmail: map[string]*models.User{},
		updates: map[int64]map[string]interface{}{},
	}
}

func (f *fakeUserStore) add(user *models.User) *models.User {
	f.users[user.ID] = user
	f.byEmail[user.Email] = user
	return user
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	user.ID = f.nextID
	f.created = append(f.created, user)
	f.add(user)
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserStore) FindByIDAndRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error) {
	user, ok := f.users[id]
	if !ok || user.Role != role {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserStore) ExistsByEmailOrIDNumber(ctx context.Context, email, idNumber string) (bool, error) {
	return f.taken, nil
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return f.emailTaken, nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	return f.all, nil
}

func (f *fakeUserStore) ListRoster(ctx context.Context) ([]models.User, error) {
	return f.roster, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	f.updates[id] = set
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDepartmentStore struct {
	departments    map[int64]*models.Department
	all            []models.Department
	taken          bool
	lastExistsCode string
	lastExistsName string
	lastExistsExcl int64
	created        []*models.Department
	updates        map[int64]map[string]interface{}
	deleted        []int64
	nextID         int64
}

func newFakeDepartmentStore() *fakeDepartmentStore {
	return &fakeDepartmentStore{
		departments: map[int64]*models.Department{},
		updates:     map[int64]map[string]interface{}{},
	}
}

func (f *fakeDepartmentStore) add(department *models.Department) *models.Department {
	f.departments[department.ID] = department
	return department
}

func (f *fakeDepartmentStore) Create(ctx context.Context, department *models.Department) error {
	f.nextID++
	department.ID = f.nextID
	f.created = append(f.created, department)
	f.add(department)
	return nil
}

func (f *fakeDepartmentStore) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	department, ok := f.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return department, nil
}

func (f *fakeDepartmentStore) List(ctx context.Context) ([]models.Department, error) {
	return f.all, nil
}

func (f *fakeDepartmentStore) ExistsByCodeOrName(ctx context.Context, code, name string, excludeID int64) (bool, error) {
	f.lastExistsCode = code
	f.lastExistsName = name
	f.lastExistsExcl = excludeID
	return f.taken, nil
}

func (f *fakeDepartmentStore) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	f.updates[id] = set
	return nil
}

func (f *fakeDepartmentStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCourseStore struct {
	courses   map[int64]*models.Course
	all       []models.CourseDetail
	codeTaken bool
	count     int
	created   []*models.Course
	updates   map[int64]map[string]interface{}
	deleted   []int64
	nextID    int64
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{
		courses: map[int64]*models.Course{},
		updates: map[int64]map[string]interface{}{},
	}
}

func (f *fakeCourseStore) add(course *models.Course) *models.Course {
	f.courses[course.ID] = course
	return course
}

func (f *fakeCourseStore) Create(ctx context.Context, course *models.Course) error {
	f.nextID++
	course.ID = f.nextID
	f.created = append(f.created, course)
	f.add(course)
	return nil
}

func (f *fakeCourseStore) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (f *fakeCourseStore) List(ctx context.Context) ([]models.CourseDetail, error) {
	return f.all, nil
}

func (f *fakeCourseStore) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	return f.codeTaken, nil
}

func (f *fakeCourseStore) CountBySemester(ctx context.Context, semesterID int64) (int, error) {
	return f.count, nil
}

func (f *fakeCourseStore) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	f.updates[id] = set
	return nil
}

func (f *fakeCourseStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSemesterStore struct {
	semesters map[int64]*models.Semester
	all       []models.Semester
	created   []*models.Semester
	updates   map[int64]map[string]interface{}
	deleted   []int64
	nextID    int64
}

func newFakeSemesterStore() *fakeSemesterStore {
	return &fakeSemesterStore{
		semesters: map[int64]*models.Semester{},
		updates:   map[int64]map[string]interface{}{},
	}
}

func (f *fakeSemesterStore) add(semester *models.Semester) *models.Semester {
	f.semesters[semester.ID] = semester
	return semester
}

func (f *fakeSemesterStore) Create(ctx context.Context, semester *models.Semester) error {
	f.nextID++
	semester.ID = f.nextID
	f.created = append(f.created, semester)
	f.add(semester)
	return nil
}

func (f *fakeSemesterStore) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	semester, ok := f.semesters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return semester, nil
}

func (f *fakeSemesterStore) List(ctx context.Context) ([]models.Semester, error) {
	return f.all, nil
}

func (f *fakeSemesterStore) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	f.updates[id] = set
	return nil
}

func (f *fakeSemesterStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeEnrollmentStore struct {
	enrollments map[int64]*models.Enrollment
	exists      bool
	createErr   error
	all         []models.EnrollmentDetail
	roster      []models.CourseRosterEntry
	graded      []models.GradedCourse
	listedFor   int64
	created     []*models.Enrollment
	updates     map[int64]map[string]interface{}
	grades      map[int64]string
	deleted     []int64
	nextID      int64
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		enrollments: map[int64]*models.Enrollment{},
		updates:     map[int64]map[string]interface{}{},
		grades:      map[int64]string{},
	}
}

func (f *fakeEnrollmentStore) add(enrollment *models.Enrollment) *models.Enrollment {
	f.enrollments[enrollment.ID] = enrollment
	return enrollment
}

func (f *fakeEnrollmentStore) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	enrollment.ID = f.nextID
	f.created = append(f.created, enrollment)
	f.add(enrollment)
	return nil
}

func (f *fakeEnrollmentStore) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

func (f *fakeEnrollmentStore) Exists(ctx context.Context, userID, courseID int64) (bool, error) {
	return f.exists, nil
}

func (f *fakeEnrollmentStore) List(ctx context.Context, userID int64) ([]models.EnrollmentDetail, error) {
	f.listedFor = userID
	return f.all, nil
}

func (f *fakeEnrollmentStore) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseRosterEntry, error) {
	return f.roster, nil
}

func (f *fakeEnrollmentStore) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	f.updates[id] = set
	return nil
}

func (f *fakeEnrollmentStore) UpdateGrade(ctx context.Context, id int64, grade string) error {
	f.grades[id] = grade
	return nil
}

func (f *fakeEnrollmentStore) ListGraded(ctx context.Context, userID int64) ([]models.GradedCourse, error) {
	return f.graded, nil
}

func (f *fakeEnrollmentStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAssignmentStore struct {
	assignments map[int64]*models.CourseAssignment
	pairs       map[[2]int64]bool
	all         []models.CourseAssignmentDetail
	listedFor   int64
	created     []*models.CourseAssignment
	deleted     []int64
	nextID      int64
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{
		assignments: map[int64]*models.CourseAssignment{},
		pairs:       map[[2]int64]bool{},
	}
}

func (f *fakeAssignmentStore) assign(instructorID, courseID int64) {
	f.pairs[[2]int64{instructorID, courseID}] = true
}

func (f *fakeAssignmentStore) Create(ctx context.Context, assignment *models.CourseAssignment) error {
	f.nextID++
	assignment.ID = f.nextID
	f.created = append(f.created, assignment)
	f.assignments[assignment.ID] = assignment
	f.assign(assignment.InstructorID, assignment.CourseID)
	return nil
}

func (f *fakeAssignmentStore) FindByID(ctx context.Context, id int64) (*models.CourseAssignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return assignment, nil
}

func (f *fakeAssignmentStore) Exists(ctx context.Context, instructorID, courseID int64) (bool, error) {
	return f.pairs[[2]int64{instructorID, courseID}], nil
}

func (f *fakeAssignmentStore) List(ctx context.Context, instructorID int64) ([]models.CourseAssignmentDetail, error) {
	f.listedFor = instructorID
	return f.all, nil
}

func (f *fakeAssignmentStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func studentClaims(id int64) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent, FirstName: "Student", RegisteredClaims: jwt.RegisteredClaims{}}
}

func instructorClaims(id int64) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleInstructor, FirstName: "Instructor", RegisteredClaims: jwt.RegisteredClaims{}}
}

func adminClaims(id int64) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleAdmin, FirstName: "Admin", RegisteredClaims: jwt.RegisteredClaims{}}
}

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func intPtr(i int) *int { return &i }
