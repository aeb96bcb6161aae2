// Package assistant answers admissions questions from a fixed table of canned
// replies keyed by Russian keywords.
package assistant

import "strings"

type Category string

const (
	CategoryAnalysis       Category = "analysis"
	CategoryRecommendation Category = "recommendation"
	CategoryGeneral        Category = "general"
)

// Reply is one assistant message.
type Reply struct {
	Content  string   `json:"content"`
	Category Category `json:"category"`
}

type rule struct {
	keywords []string
	reply    Reply
}

// rules are tested in order; the first rule with a matching keyword wins.
var rules = []rule{
	{
		keywords: []string{"егэ", "экзамен", "балл"},
		reply:    Reply{Content: examAnalysis, Category: CategoryAnalysis},
	},
	{
		keywords: []string{"вуз", "университет", "колледж"},
		reply:    Reply{Content: institutionPicks, Category: CategoryRecommendation},
	},
	{
		keywords: []string{"подготовка", "готовиться"},
		reply:    Reply{Content: preparationPlan, Category: CategoryRecommendation},
	},
}

var fallback = Reply{Content: clarification, Category: CategoryGeneral}

// Greeting is the first message shown in a new conversation.
var Greeting = Reply{Content: greeting, Category: CategoryGeneral}

// Respond picks the canned reply for input.
func Respond(input string) Reply {
	text := strings.ToLower(input)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.reply
			}
		}
	}
	return fallback
}

const greeting = `Привет! Я ваш ИИ-помощник по поступлению. Я могу помочь вам:

• Проанализировать результаты ЕГЭ/ОГЭ
• Подобрать подходящие вузы и специальности
• Дать рекомендации по подготовке
• Оценить шансы на поступление

Что бы вы хотели узнать?`

const examAnalysis = `📊 **Анализ результатов ЕГЭ**

На основе ваших результатов:
• Математика: 85 баллов
• Информатика: 90 баллов
• Русский язык: 88 баллов

**Общий балл: 263**

🎯 **Рекомендации:**
1. Ваши результаты позволяют претендовать на бюджетные места в топовых вузах
2. Особенно сильны в IT-направлениях
3. Рекомендую рассмотреть МФТИ, ИТМО, ВШЭ

Хотите получить детальный анализ по конкретным специальностям?`

const institutionPicks = `🏛️ **Подбор учебных заведений**

Исходя из ваших результатов и интересов, рекомендую:

**Топ-университеты:**
1. **МФТИ** - Прикладная математика и информатика
   - Проходной балл: 290
   - Ваши шансы: 85%

2. **ИТМО** - Программная инженерия
   - Проходной балл: 280
   - Ваши шансы: 90%

3. **ВШЭ** - Прикладная математика
   - Проходной балл: 270
   - Ваши шансы: 95%

**Колледжи (запасной вариант):**
• Колледж информатики и программирования
• Московский колледж управления и права

Нужна помощь с подачей документов?`

const preparationPlan = `📚 **План подготовки**

**До экзаменов (если ещё не сдавали):**
1. **Математика** - решайте задачи повышенной сложности
2. **Информатика** - изучайте алгоритмы и программирование
3. **Русский язык** - тренируйте сочинения

**После получения результатов:**
1. Подайте документы в 5 вузов
2. Подготовьтесь к дополнительным испытаниям
3. Изучите программы обучения

**Полезные ресурсы:**
• Решу ЕГЭ
• ФИПИ
• Онлайн-курсы вузов

Есть вопросы по конкретным предметам?`

const clarification = `🤖 Я понимаю ваш вопрос. Для более точного ответа мне нужна дополнительная информация:

• Ваши результаты ЕГЭ/ОГЭ
• Интересующие специальности
• Предпочтения по вузам
• Географические ограничения

Задайте более конкретный вопрос, и я дам детальный ответ!`
