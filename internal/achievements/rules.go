package achievements

// Achievement categories.
const (
	CategoryScoring    = "scoring"
	CategoryStreaks    = "streaks"
	CategoryDedication = "dedication"
	CategoryCollection = "collection"
	CategorySocial     = "social"
	CategorySpecial    = "special"
)

// Rarity tiers.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Def is the displayable identity of an achievement
type Def struct {
	Key         string
	Title       string
	Description string
	Icon        string
	Category    string
	Rarity      string
	Hidden      bool
}

// Rule pairs an achievement definition with its unlock predicate. Check is
// pure: it reads the snapshot and returns whether the condition holds now.
// Rules never un-grant and their evaluation order does not matter.
type Rule struct {
	Def   Def
	Check func(h History) bool
}

// DefaultRules returns the built-in rule table. The registry is open: append
// a Rule and the evaluator picks it up without any orchestration changes.
func DefaultRules() []Rule {
	return []Rule{
		// Scoring.
		rule("first-guess", "Первый шаг", "Сделайте первую попытку угадать дату", "👣", CategoryScoring, RarityCommon,
			func(h History) bool { return h.TotalGuesses >= 1 }),
		rule("guesses-10", "Разминка", "Сделайте 10 попыток", "🔟", CategoryScoring, RarityCommon,
			func(h History) bool { return h.TotalGuesses >= 10 }),
		rule("guesses-100", "Сотня", "Сделайте 100 попыток", "💯", CategoryScoring, RarityRare,
			func(h History) bool { return h.TotalGuesses >= 100 }),
		rule("guesses-500", "Одержимость", "Сделайте 500 попыток", "🌀", CategoryScoring, RarityEpic,
			func(h History) bool { return h.TotalGuesses >= 500 }),
		rule("guesses-1000", "Тысячник", "Сделайте 1000 попыток", "🏔️", CategoryScoring, RarityLegendary,
			func(h History) bool { return h.TotalGuesses >= 1000 }),
		rule("first-combo", "Комбо!", "Угадайте день, месяц и год одной попыткой", "🎯", CategoryScoring, RarityCommon,
			func(h History) bool { return h.ComboCount >= 1 }),
		rule("combo-10", "Снайпер", "Соберите 10 комбо", "🏹", CategoryScoring, RarityRare,
			func(h History) bool { return h.ComboCount >= 10 }),
		rule("combo-50", "Машина времени", "Соберите 50 комбо", "⏳", CategoryScoring, RarityLegendary,
			func(h History) bool { return h.ComboCount >= 50 }),
		rule("special-first", "Знаток", "Ответьте на особый вопрос", "💡", CategoryScoring, RarityCommon,
			func(h History) bool { return h.SpecialHitCount >= 1 }),
		rule("special-10", "Эрудит", "Ответьте на 10 особых вопросов", "🎓", CategoryScoring, RarityEpic,
			func(h History) bool { return h.SpecialHitCount >= 10 }),
		rule("people-first", "Узнал всех", "Отметьте всех людей на фотографии", "👥", CategoryScoring, RarityCommon,
			func(h History) bool { return h.PeopleAllHitCount >= 1 }),
		rule("people-25", "Физиономист", "Отметьте всех людей на 25 фотографиях", "🧑‍🤝‍🧑", CategoryScoring, RarityEpic,
			func(h History) bool { return h.PeopleAllHitCount >= 25 }),
		rule("score-10k", "Десять тысяч", "Наберите 10 000 очков суммарно", "🪙", CategoryScoring, RarityCommon,
			func(h History) bool { return h.TotalScore >= 10_000 }),
		rule("score-100k", "Сто тысяч", "Наберите 100 000 очков суммарно", "💰", CategoryScoring, RarityEpic,
			func(h History) bool { return h.TotalScore >= 100_000 }),
		rule("session-5k", "Блестящая игра", "Наберите 5000 очков за одну игру", "✨", CategoryScoring, RarityRare,
			func(h History) bool { return h.BestSessionScore >= 5000 }),
		rule("guess-2000", "Идеальный ответ", "Наберите 2000 очков одной попыткой", "🌟", CategoryScoring, RarityEpic,
			func(h History) bool { return h.BestGuessScore >= 2000 }),

		// Streaks.
		rule("day-streak-3", "Серия из трёх", "Угадайте точный день 3 раза подряд", "3️⃣", CategoryStreaks, RarityCommon,
			func(h History) bool { return h.MaxExactDayStreak >= 3 }),
		rule("day-streak-5", "Серия из пяти", "Угадайте точный день 5 раз подряд", "5️⃣", CategoryStreaks, RarityRare,
			func(h History) bool { return h.MaxExactDayStreak >= 5 }),
		rule("day-streak-10", "Нечеловеческая точность", "Угадайте точный день 10 раз подряд", "🔮", CategoryStreaks, RarityLegendary,
			func(h History) bool { return h.MaxExactDayStreak >= 10 }),
		rule("combo-streak-3", "Тройное комбо", "Соберите 3 комбо подряд", "🔥", CategoryStreaks, RarityRare,
			func(h History) bool { return h.MaxComboStreak >= 3 }),
		rule("combo-streak-5", "Пентакилл", "Соберите 5 комбо подряд", "⚡", CategoryStreaks, RarityLegendary,
			func(h History) bool { return h.MaxComboStreak >= 5 }),
		rule("play-streak-7", "Неделя подряд", "Играйте 7 дней подряд", "📅", CategoryStreaks, RarityRare,
			func(h History) bool { return h.MaxPlayDayStreak >= 7 }),
		rule("play-streak-30", "Месяц подряд", "Играйте 30 дней подряд", "🗓️", CategoryStreaks, RarityLegendary,
			func(h History) bool { return h.MaxPlayDayStreak >= 30 }),

		// Dedication.
		rule("first-session", "Первая игра", "Завершите первую игру", "🎮", CategoryDedication, RarityCommon,
			func(h History) bool { return h.FinishedSessions >= 1 }),
		rule("sessions-10", "Постоянный гость", "Завершите 10 игр", "🏠", CategoryDedication, RarityCommon,
			func(h History) bool { return h.FinishedSessions >= 10 }),
		rule("sessions-100", "Ветеран", "Завершите 100 игр", "🎖️", CategoryDedication, RarityEpic,
			func(h History) bool { return h.FinishedSessions >= 100 }),
		rule("ranked-10", "Соревновательный дух", "Завершите 10 рейтинговых игр", "🏆", CategoryDedication, RarityRare,
			func(h History) bool { return h.RankedFinished >= 10 }),
		rule("fun-10", "Просто ради удовольствия", "Завершите 10 игр в свободном режиме", "🎈", CategoryDedication, RarityRare,
			func(h History) bool { return h.FunFinished >= 10 }),
		rule("night-owl", "Сова", "Сделайте 10 попыток глубокой ночью", "🦉", CategoryDedication, RarityRare,
			func(h History) bool { return h.NightGuessCount >= 10 }),
		rule("early-bird", "Жаворонок", "Сделайте 10 попыток ранним утром", "🐦", CategoryDedication, RarityRare,
			func(h History) bool { return h.MorningGuessCount >= 10 }),
		rule("speedrun", "Спидран", "Завершите игру быстрее чем за минуту", "🚀", CategoryDedication, RarityEpic,
			func(h History) bool { return h.FastestFinishSeconds > 0 && h.FastestFinishSeconds <= 60 }),
		rule("marathon", "Марафонец", "Проведите над одной игрой больше часа", "🐢", CategoryDedication, RarityRare,
			func(h History) bool { return h.LongestFinishSeconds >= 3600 }),
		rule("veteran-year", "Годовщина", "Играйте спустя год после регистрации", "🎂", CategoryDedication, RarityEpic,
			func(h History) bool { return h.AccountAgeDays >= 365 }),

		// Collection.
		rule("photos-50", "Коллекционер", "Сыграйте 50 разных фотографий", "🖼️", CategoryCollection, RarityRare,
			func(h History) bool { return h.DistinctPhotosGuessed >= 50 }),
		rule("photos-200", "Хранитель архива", "Сыграйте 200 разных фотографий", "🗄️", CategoryCollection, RarityEpic,
			func(h History) bool { return h.DistinctPhotosGuessed >= 200 }),
		rule("uploader-first", "Вклад в историю", "Загрузите фотографию, прошедшую модерацию", "📤", CategoryCollection, RarityCommon,
			func(h History) bool { return h.ApprovedUploadCount >= 1 }),
		rule("uploader-25", "Летописец", "Загрузите 25 одобренных фотографий", "📚", CategoryCollection, RarityEpic,
			func(h History) bool { return h.ApprovedUploadCount >= 25 }),
		rule("decades", "Сквозь десятилетия", "Покройте загрузками 10 разных лет съёмки", "🕰️", CategoryCollection, RarityLegendary,
			func(h History) bool { return h.DistinctUploadYears >= 10 }),

		// Social.
		rule("first-comment", "Первое слово", "Оставьте комментарий", "💬", CategorySocial, RarityCommon,
			func(h History) bool { return h.CommentCount >= 1 }),
		rule("comments-50", "Душа компании", "Оставьте 50 комментариев", "🗣️", CategorySocial, RarityRare,
			func(h History) bool { return h.CommentCount >= 50 }),
		rule("likes-10", "Одобрение", "Получите 10 лайков на свои комментарии", "👍", CategorySocial, RarityCommon,
			func(h History) bool { return h.CommentLikesReceived >= 10 }),
		rule("likes-100", "Любимец публики", "Получите 100 лайков на свои комментарии", "❤️", CategorySocial, RarityEpic,
			func(h History) bool { return h.CommentLikesReceived >= 100 }),
	}
}

func rule(key, title, description, icon, category, rarity string, check func(History) bool) Rule {
	return Rule{
		Def: Def{
			Key:         key,
			Title:       title,
			Description: description,
			Icon:        icon,
			Category:    category,
			Rarity:      rarity,
		},
		Check: check,
	}
}
