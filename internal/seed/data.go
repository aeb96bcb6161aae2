package seed

import (
	"github.com/yigit/abiturient/internal/app/models"
)

type userFixture struct {
	Email string
	Name  string
	Role  models.Role
}

var (
	studentFixture = userFixture{Email: "student@example.com", Name: "Анна Петрова", Role: models.RoleStudent}
	parentFixture  = userFixture{Email: "parent@example.com", Name: "Мария Петрова", Role: models.RoleParent}
)

type institutionFixture struct {
	Name        string
	Description string
	Type        string
	Direction   string
	MinScore    int
	Website     string
}

var institutionFixtures = []institutionFixture{
	{"МГУ им. М.В. Ломоносова", "Московский государственный университет - ведущий вуз России", "UNIVERSITY", "Гуманитарные науки", 280, "https://www.msu.ru"},
	{"МФТИ", "Московский физико-технический институт", "UNIVERSITY", "Технические науки", 290, "https://mipt.ru"},
	{"ВШЭ", `Национальный исследовательский университет "Высшая школа экономики"`, "UNIVERSITY", "Экономика и управление", 270, "https://www.hse.ru"},
	{"МГИМО", "Московский государственный институт международных отношений", "UNIVERSITY", "Международные отношения", 285, "https://mgimo.ru"},
	{"СПбГУ", "Санкт-Петербургский государственный университет", "UNIVERSITY", "Универсальный", 275, "https://spbu.ru"},
	{"ИТМО", "Университет ИТМО - ведущий вуз в области IT", "UNIVERSITY", "Информационные технологии", 280, "https://itmo.ru"},
	{"МГТУ им. Н.Э. Баумана", "Московский государственный технический университет", "UNIVERSITY", "Технические науки", 270, "https://bmstu.ru"},
	{"РГУ нефти и газа им. И.М. Губкина", "Российский государственный университет нефти и газа", "UNIVERSITY", "Нефтегазовая отрасль", 260, "https://gubkin.ru"},
	{"Московский колледж управления и права", "Среднее профессиональное образование", "COLLEGE", "Управление и право", 200, "https://mcup.ru"},
	{"Колледж информатики и программирования", "Среднее профессиональное образование в IT", "COLLEGE", "Информационные технологии", 180, "https://kip-college.ru"},
}

type programFixture struct {
	Institution  string
	Name         string
	Description  string
	Faculty      string
	Requirements string
	Exams        []string
}

var programFixtures = []programFixture{
	{
		Institution:  "МГУ им. М.В. Ломоносова",
		Name:         "Прикладная математика и информатика",
		Description:  "Фундаментальная подготовка в области математики и программирования",
		Faculty:      "Факультет вычислительной математики и кибернетики",
		Requirements: "Математика, Информатика, Русский язык",
		Exams:        []string{"Математика", "Информатика", "Русский язык"},
	},
	{
		Institution:  "МФТИ",
		Name:         "Физика",
		Description:  "Теоретическая и экспериментальная физика",
		Faculty:      "Физический факультет",
		Requirements: "Математика, Физика, Русский язык",
		Exams:        []string{"Математика", "Физика", "Русский язык"},
	},
	{
		Institution:  "ВШЭ",
		Name:         "Экономика",
		Description:  "Экономическая теория и практика",
		Faculty:      "Факультет экономических наук",
		Requirements: "Математика, Обществознание, Русский язык",
		Exams:        []string{"Математика", "Обществознание", "Русский язык"},
	},
	{
		Institution:  "МГИМО",
		Name:         "Международные отношения",
		Description:  "Подготовка специалистов по международным отношениям",
		Faculty:      "Факультет международных отношений",
		Requirements: "История, Иностранный язык, Русский язык",
		Exams:        []string{"История", "Иностранный язык", "Русский язык"},
	},
	{
		Institution:  "ИТМО",
		Name:         "Программная инженерия",
		Description:  "Разработка программного обеспечения",
		Faculty:      "Факультет программной инженерии",
		Requirements: "Математика, Информатика, Русский язык",
		Exams:        []string{"Математика", "Информатика", "Русский язык"},
	},
}

var examFixtures = []models.ExamResult{
	{Subject: "Математика", Score: 85, ExamType: models.ExamTypeEGE},
	{Subject: "Информатика", Score: 90, ExamType: models.ExamTypeEGE},
	{Subject: "Русский язык", Score: 88, ExamType: models.ExamTypeEGE},
}

func strPtr(s string) *string { return &s }

var achievementFixtures = []models.Achievement{
	{Title: "Победитель олимпиады по информатике", Description: strPtr("1 место в региональной олимпиаде по информатике"), Type: models.AchievementOlympiad},
	{Title: "Сертификат по программированию", Description: strPtr("Сертификат о прохождении курса Python"), Type: models.AchievementCertificate},
}

var reportFixture = models.Report{
	Title:   "Анализ поступления - Анна Петрова",
	Content: "На основе ваших результатов ЕГЭ и достижений, мы рекомендуем рассмотреть следующие направления...",
	Recommendations: "1. Подать документы в МФТИ на программу \"Прикладная математика и информатика\"\n" +
		"2. Рассмотреть ИТМО для программной инженерии\n" +
		"3. Подготовиться к дополнительным испытаниям",
}
