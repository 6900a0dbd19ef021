package knowledge

import (
	"github.com/shopspring/decimal"

	"github.com/masterok/backend/internal/models"
)

func rub(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// catalog returns the built-in solutions. Order matters: score ties resolve
// to the earlier entry.
func catalog() []Solution {
	return []Solution{
		{
			ID:             "elec_outlet_not_working",
			Name:           "Розетка не работает",
			Category:       "electrical",
			Description:    "Электрическая розетка не подает питание на подключенные устройства",
			SkillLevel:     SkillIntermediate,
			EstimatedHours: 0.5,
			RequiredTools: []string{
				"Мультиметр", "Индикаторная отвертка", "Отвертка крестовая",
				"Отвертка плоская", "Плоскогубцы", "Изолента",
			},
			RequiredMaterials: []models.Material{
				{Name: "Розетка (при необходимости замены)", Quantity: 1, Unit: "шт", CostRub: rub(150)},
				{Name: "Изолента", Quantity: 1, Unit: "рулон", CostRub: rub(50)},
			},
			SafetyPrecautions: []string{
				"ОБЯЗАТЕЛЬНО отключите электропитание на щитке перед началом работ",
				"Проверьте отсутствие напряжения индикаторной отверткой",
				"Работайте в сухих перчатках на резиновой основе",
				"Не прикасайтесь к проводам голыми руками",
				"Убедитесь, что пол сухой",
			},
			Steps: []string{
				"Отключите автомат на электрощитке для данной линии",
				"Проверьте индикаторной отверткой отсутствие напряжения в розетке",
				"Снимите декоративную панель розетки",
				"Открутите винты крепления механизма розетки",
				"Аккуратно извлеките механизм из подрозетника",
				"Проверьте надежность подключения проводов к клеммам",
				"Если контакты окислены - зачистите их",
				"Если розетка повреждена - замените на новую",
				"Подключите провода согласно маркировке (фаза, ноль, земля)",
				"Закрепите механизм в подрозетнике",
				"Установите декоративную панель",
				"Включите автомат на щитке",
				"Проверьте работу розетки тестером или подключением нагрузки",
			},
			CommonMistakes: []string{
				"Работа без отключения электропитания",
				"Неправильное подключение фазы и нуля",
				"Слабая затяжка клемм - приводит к искрению",
				"Игнорирование заземляющего провода",
				"Использование розетки не подходящей мощности",
			},
			Troubleshooting: []string{
				"Если розетка все равно не работает - проверьте автомат на щитке",
				"Проверьте другие розетки в той же комнате - возможна общая проблема",
				"Если сработал автомат - возможно короткое замыкание, требуется детальная диагностика",
				"Если розетка горячая - немедленно отключите питание, требуется замена",
			},
			CostRange: CostRange{Min: 800, Max: 1500, Materials: 200},
		},
		{
			ID:             "elec_switch_not_working",
			Name:           "Выключатель не включает свет",
			Category:       "electrical",
			Description:    "Выключатель не управляет освещением",
			SkillLevel:     SkillIntermediate,
			EstimatedHours: 0.5,
			RequiredTools: []string{
				"Индикаторная отвертка", "Отвертка крестовая", "Отвертка плоская",
				"Мультиметр", "Плоскогубцы",
			},
			RequiredMaterials: []models.Material{
				{Name: "Выключатель (при замене)", Quantity: 1, Unit: "шт", CostRub: rub(120)},
				{Name: "Изолента", Quantity: 1, Unit: "рулон", CostRub: rub(50)},
			},
			SafetyPrecautions: []string{
				"Отключите автомат освещения на щитке",
				"Проверьте отсутствие напряжения",
				"Не работайте мокрыми руками",
			},
			Steps: []string{
				"Отключите автомат освещения",
				"Снимите клавишу выключателя",
				"Открутите рамку выключателя",
				"Извлеките механизм из подрозетника",
				"Проверьте надежность контактов",
				"При необходимости замените выключатель",
				"Соберите в обратном порядке",
				"Включите автомат и проверьте работу",
			},
			CommonMistakes: []string{
				"Путаница с проводами при подключении",
				"Перетягивание винтов крепления",
				"Использование выключателя неподходящей мощности",
			},
			Troubleshooting: []string{
				"Проверьте лампочку - возможно проблема в ней",
				"Проверьте патрон светильника",
				"Если выключатель теплый - требуется замена",
			},
			CostRange: CostRange{Min: 700, Max: 1200, Materials: 170},
		},
		{
			ID:             "elec_breaker_tripping",
			Name:           "Автомат выбивает",
			Category:       "electrical",
			Description:    "Автоматический выключатель постоянно отключается",
			SkillLevel:     SkillAdvanced,
			EstimatedHours: 1.5,
			RequiredTools: []string{
				"Мультиметр", "Токовые клещи", "Отвертки", "Индикаторная отвертка",
			},
			RequiredMaterials: []models.Material{
				{Name: "Автоматический выключатель (при замене)", Quantity: 1, Unit: "шт", CostRub: rub(300)},
			},
			SafetyPrecautions: []string{
				"Отключите вводной автомат перед работой со щитком",
				"Работайте в диэлектрических перчатках",
				"Не включайте автомат при наличии короткого замыкания",
			},
			Steps: []string{
				"Отключите вводной автомат",
				"Отключите все приборы на проблемной линии",
				"Включите автомат - если срабатывает сразу, проблема в проводке",
				"Если не срабатывает, подключайте приборы по одному",
				"Определите проблемный прибор или участок проводки",
				"При перегрузке - распределите нагрузку или замените автомат на более мощный",
				"При коротком замыкании - найдите и устраните место КЗ",
				"Проверьте затяжку контактов в щитке",
			},
			CommonMistakes: []string{
				"Установка автомата большего номинала без проверки проводки",
				"Игнорирование причины срабатывания",
				"Многократное включение при КЗ - может привести к пожару",
			},
			Troubleshooting: []string{
				"Если автомат теплый - возможна перегрузка или плохой контакт",
				"Если срабатывает при включении определенного прибора - проблема в приборе",
				"Если срабатывает во влажную погоду - возможна утечка на землю",
			},
			CostRange: CostRange{Min: 1500, Max: 5000, Materials: 300},
		},
		{
			ID:             "elec_chandelier_install",
			Name:           "Установка люстры",
			Category:       "electrical",
			Description:    "Монтаж и подключение потолочной люстры",
			SkillLevel:     SkillIntermediate,
			EstimatedHours: 1.0,
			RequiredTools: []string{
				"Стремянка", "Отвертки", "Плоскогубцы", "Индикаторная отвертка",
				"Перфоратор (при необходимости)", "Клеммники или колпачки СИЗ",
			},
			RequiredMaterials: []models.Material{
				{Name: "Люстра", Quantity: 1, Unit: "шт", CostRub: rub(0)},
				{Name: "Клеммники", Quantity: 3, Unit: "шт", CostRub: rub(30)},
				{Name: "Дюбели и крюк (если нужно)", Quantity: 1, Unit: "компл", CostRub: rub(100)},
			},
			SafetyPrecautions: []string{
				"Отключите автомат освещения",
				"Проверьте отсутствие напряжения",
				"Используйте устойчивую стремянку",
				"Попросите помощника придержать люстру при монтаже",
			},
			Steps: []string{
				"Отключите электропитание",
				"Демонтируйте старую люстру (если есть)",
				"Проверьте надежность крепления крюка или планки",
				"Определите назначение проводов (фаза, ноль, заземление)",
				"Подключите провода люстры к проводам на потолке через клеммники",
				"Закрепите люстру на крюке или планке",
				"Установите лампочки",
				"Включите питание и проверьте работу",
			},
			CommonMistakes: []string{
				"Неправильное подключение проводов - люстра не работает",
				"Ненадежное крепление - люстра может упасть",
				"Превышение допустимой мощности ламп",
			},
			Troubleshooting: []string{
				"Если не включается - проверьте правильность подключения фазы",
				"Если работает только часть ламп - проверьте двухклавишный выключатель",
				"Если мигает - проверьте контакты",
			},
			CostRange: CostRange{Min: 1200, Max: 2500, Materials: 130},
		},
		{
			ID:             "plumb_faucet_leak",
			Name:           "Течет кран",
			Category:       "plumbing",
			Description:    "Капает или течет вода из крана",
			SkillLevel:     SkillBasic,
			EstimatedHours: 0.5,
			RequiredTools: []string{
				"Разводной ключ", "Плоскогубцы", "Отвертка", "Тряпка или ведро",
			},
			RequiredMaterials: []models.Material{
				{Name: "Прокладка или картридж", Quantity: 1, Unit: "шт", CostRub: rub(150)},
				{Name: "Уплотнительная лента", Quantity: 1, Unit: "моток", CostRub: rub(50)},
			},
			SafetyPrecautions: []string{
				"Перекройте воду на кране или стояке",
				"Подготовьте тряпки для вытирания воды",
				"Будьте аккуратны с керамическими деталями",
			},
			Steps: []string{
				"Перекройте подачу воды",
				"Откройте кран для сброса остаточного давления",
				"Снимите декоративную заглушку на ручке крана",
				"Открутите винт крепления ручки",
				"Снимите ручку крана",
				"Открутите буксу или картридж (в зависимости от типа крана)",
				"Замените прокладку или картридж",
				"Соберите кран в обратном порядке",
				"Откройте воду и проверьте отсутствие течи",
			},
			CommonMistakes: []string{
				"Сильное затягивание - можно сорвать резьбу",
				"Неправильный выбор прокладки или картриджа",
				"Повреждение хромированных поверхностей инструментом",
			},
			Troubleshooting: []string{
				"Если течь продолжается - проверьте правильность установки прокладки",
				"Если течь из-под гайки - замените уплотнение",
				"Если кран старый - возможно проще заменить целиком",
			},
			CostRange: CostRange{Min: 600, Max: 1500, Materials: 200},
		},
		{
			ID:             "plumb_drain_clog",
			Name:           "Засор слива",
			Category:       "plumbing",
			Description:    "Вода плохо уходит или не уходит совсем",
			SkillLevel:     SkillBasic,
			EstimatedHours: 1.0,
			RequiredTools: []string{
				"Вантуз", "Сантехнический трос", "Разводной ключ", "Ведро", "Тряпки",
			},
			RequiredMaterials: []models.Material{
				{Name: "Средство для прочистки труб (опционально)", Quantity: 1, Unit: "бутылка", CostRub: rub(200)},
			},
			SafetyPrecautions: []string{
				"Используйте перчатки при работе с химическими средствами",
				"Подготовьте ведро для сбора воды",
				"Обеспечьте вентиляцию при использовании химии",
			},
			Steps: []string{
				"Попробуйте прочистить вантузом - создайте вакуум и резко выдерните",
				"Если не помогло - открутите сифон под раковиной",
				"Слейте воду в ведро",
				"Прочистите сифон от загрязнений",
				"Если засор глубже - используйте сантехнический трос",
				"Вводите трос вращательными движениями",
				"После прочистки промойте трубу горячей водой",
				"Установите сифон на место",
				"Проверьте герметичность соединений",
			},
			CommonMistakes: []string{
				"Использование слишком агрессивной химии - можно повредить трубы",
				"Неаккуратное обращение с тросом - можно повредить трубы",
				"Потеря прокладок при снятии сифона",
			},
			Troubleshooting: []string{
				"Если засоры частые - установите решетку на слив",
				"Периодически промывайте трубы кипятком с содой",
				"Если не помогает - возможно проблема в стояке, нужна управляющая компания",
			},
			CostRange: CostRange{Min: 800, Max: 2000, Materials: 200},
		},
		{
			ID:             "plumb_toilet_running",
			Name:           "Унитаз постоянно набирает воду",
			Category:       "plumbing",
			Description:    "Бачок унитаза постоянно подтекает или набирает воду",
			SkillLevel:     SkillBasic,
			EstimatedHours: 0.5,
			RequiredTools: []string{
				"Плоскогубцы", "Разводной ключ", "Отвертка",
			},
			RequiredMaterials: []models.Material{
				{Name: "Прокладка или мембрана поплавкового клапана", Quantity: 1, Unit: "шт", CostRub: rub(100)},
				{Name: "Арматура бачка (при полной замене)", Quantity: 1, Unit: "компл", CostRub: rub(600)},
			},
			SafetyPrecautions: []string{
				"Перекройте воду на подводке к бачку",
				"Слейте воду из бачка",
				"Подготовьте тряпки",
			},
			Steps: []string{
				"Перекройте воду",
				"Слейте воду из бачка",
				"Снимите крышку бачка",
				"Проверьте уровень поплавка - отрегулируйте если нужно",
				"Проверьте запорную мембрану сливного клапана",
				"Замените поврежденные прокладки или мембраны",
				"Проверьте перелив - не должен быть ниже уровня воды",
				"Соберите бачок",
				"Откройте воду и проверьте работу",
			},
			CommonMistakes: []string{
				"Неправильная регулировка поплавка",
				"Повреждение хрупких пластиковых деталей",
				"Потеря мелких деталей при разборке",
			},
			Troubleshooting: []string{
				"Если вода подтекает в чашу - проблема в сливном клапане",
				"Если бачок переполняется - проблема в поплавковом механизме",
				"Старую арматуру лучше заменить целиком",
			},
			CostRange: CostRange{Min: 500, Max: 1500, Materials: 700},
		},
		{
			ID:             "appl_washer_not_drain",
			Name:           "Стиральная машина не сливает воду",
			Category:       "appliances",
			Description:    "Вода остается в барабане после стирки",
			SkillLevel:     SkillIntermediate,
			EstimatedHours: 1.0,
			RequiredTools: []string{
				"Плоскогубцы", "Отвертка", "Тазик или ведро", "Фонарик",
			},
			RequiredMaterials: []models.Material{
				{Name: "Помпа (при необходимости)", Quantity: 1, Unit: "шт", CostRub: rub(1200)},
			},
			SafetyPrecautions: []string{
				"Отключите машину от электросети",
				"Перекройте воду",
				"Подготовьте емкость для воды",
				"Будьте готовы к выливанию воды",
			},
			Steps: []string{
				"Отключите машину от сети и воды",
				"Найдите фильтр сливного насоса (обычно внизу спереди)",
				"Подставьте тазик",
				"Аккуратно открутите крышку фильтра",
				"Слейте воду и извлеките фильтр",
				"Очистите фильтр от мусора, волос, мелких предметов",
				"Проверьте сливной шланг на перегибы и засоры",
				"Установите фильтр обратно",
				"Проверьте работу на коротком цикле полоскания",
			},
			CommonMistakes: []string{
				"Потеря или повреждение резинового уплотнителя фильтра",
				"Неполное закручивание фильтра - будет течь",
				"Проверка без подставленной емкости - потоп",
			},
			Troubleshooting: []string{
				"Если после чистки не работает - проблема в насосе",
				"Проверьте программу - некоторые режимы завершаются с водой",
				"Если насос гудит но не качает - возможно заклинило крыльчатку",
			},
			CostRange: CostRange{Min: 1000, Max: 3500, Materials: 1200},
		},
	}
}
