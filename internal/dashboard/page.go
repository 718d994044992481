package dashboard

import (
	"salary-board/internal/schema"

	"golang.org/x/text/language"
)

// pageCopy is the static text of the page in one language.
type pageCopy struct {
	Title        string
	Intro        string
	Instructions string
	StepPlayer   string
	PlayerHelp   string
	PanelHelp    string
	StepPredict  string
	Predict      string
	StepUse      string
	Advanced     string
	AddControl   string
	League       string
	Glossary     []string
	GlossaryLink string
}

var pageCopies = map[string]pageCopy{
	"ru": {
		Title:        "Веб-сервис для прогнозирования зарплат профессиональных спортсменов",
		Intro:        "Этот сервис предназначен для прогнозирования заработной платы игроков НБА на основе их статистики в сезоне 2017-2018 годов.",
		Instructions: "Следуйте приведенным ниже инструкциям, чтобы рассчитать прогноз.",
		StepPlayer:   "1. Введите имя игрока.",
		PlayerHelp:   "Вы можете выбрать любого активного игрока или настроить игрока со своими параметрами. В этом случае выберите «" + schema.PlayerLabel(schema.AbstractPlayer, language.Russian) + "» либо установите дополнительные настройки для любого активного игрока.",
		PanelHelp:    "Опционально. Вы можете установить параметры игрока на боковой панели. Это может помочь понять важность различных показателей для заработной платы игрока.",
		StepPredict:  "2. Когда будете готовы, нажмите кнопку.",
		Predict:      "Предсказать",
		StepUse:      "3. Пользуйтесь!",
		Advanced:     "Показать дополнительные настройки",
		AddControl:   "Добавить еще один параметр",
		League:       "Покажи мне некоторые факты о лиге",
		Glossary: []string{
			"PER - Коэффициент эффективности игрока",
			"BPM - Плюс-минус на площадке",
			"USG% - Процент использования",
		},
		GlossaryLink: "Для более детальной информации",
	},
	"en": {
		Title:        "Salary forecasts for professional athletes",
		Intro:        "This service predicts the salary of NBA players from their 2017-2018 season statistics.",
		Instructions: "Follow the steps below to get a forecast.",
		StepPlayer:   "1. Choose a player.",
		PlayerHelp:   "Pick any active player or build your own. To build your own, choose \"" + schema.AbstractPlayer + "\" or open the advanced settings for any active player.",
		PanelHelp:    "Optional. Set the player's parameters in the side panel to see how each statistic affects the salary.",
		StepPredict:  "2. When you are ready, press the button.",
		Predict:      "Predict",
		StepUse:      "3. Enjoy!",
		Advanced:     "Show advanced settings",
		AddControl:   "Add another parameter",
		League:       "Show me some league facts",
		Glossary: []string{
			"PER - Player Efficiency Rating",
			"BPM - Box Plus/Minus",
			"USG% - Usage Percentage",
		},
		GlossaryLink: "More details",
	},
}

func copyFor(lang string) pageCopy {
	tag := schema.MatchLanguage(lang)
	base, _ := tag.Base()
	if c, ok := pageCopies[base.String()]; ok {
		return c
	}
	return pageCopies["ru"]
}

const pageTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
    <meta charset="utf-8">
    <title>{{.Copy.Title}}</title>
    <script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; display: flex; background: #fafafa; color: #262730; }
        aside { width: 300px; padding: 20px; background: #f0f2f6; min-height: 100vh; box-sizing: border-box; }
        main { flex: 1; padding: 20px 40px; max-width: 1100px; }
        h1 { font-size: 1.8em; }
        h2 { font-style: italic; font-size: 1.3em; margin-top: 30px; }
        .control { margin: 16px 0; }
        .control label { display: block; font-weight: bold; }
        .control small { color: #666; display: block; }
        .message { font-size: 1.2em; margin: 20px 0; font-weight: bold; }
        .error { color: #c0392b; }
        .glossary { font-style: italic; }
        button { padding: 8px 20px; font-size: 1em; cursor: pointer; }
    </style>
</head>
<body>
    <aside>
        <label><input type="checkbox" id="advanced"> {{.Copy.Advanced}}</label>
        <div id="extra" style="display: none">
            <p>{{.Copy.AddControl}}</p>
            <select id="controls" multiple size="6"></select>
        </div>
        <div id="sliders"></div>
    </aside>
    <main>
        <h1>{{.Copy.Title}}</h1>
        <p>{{.Copy.Intro}}</p>
        <p>{{.Copy.Instructions}}</p>

        <h2>{{.Copy.StepPlayer}}</h2>
        <p>{{.Copy.PlayerHelp}}</p>
        <select id="player">
            {{range .Players}}<option value="{{.Value}}">{{.Label}}</option>
            {{end}}
        </select>
        <p>{{.Copy.PanelHelp}}</p>

        <h2>{{.Copy.StepPredict}}</h2>
        <button id="predict">{{.Copy.Predict}}</button>
        <div id="message" class="message"></div>
        <div id="salaries"></div>
        <div id="skills"></div>
        <div id="glossary" class="glossary" style="display: none">
            {{range .Copy.Glossary}}<p>{{.}}</p>
            {{end}}
            <p>{{.Copy.GlossaryLink}}: <a href="https://www.basketball-reference.com/about/glossary.html">basketball-reference.com</a></p>
        </div>

        <h2>{{.Copy.StepUse}}</h2>
        <label><input type="checkbox" id="league"> {{.Copy.League}}</label>
        <div id="leaders"></div>
        <div id="efficiency"></div>
    </main>

    <script>
        const lang = document.documentElement.lang;
        const state = { player: '', advanced: false, controls: null, overrides: {}, predict: false, show_league: false, language: lang };
        let ws;

        function connect() {
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(proto + location.host + '/ws');
            ws.onopen = () => send(false);
            ws.onmessage = (event) => draw(JSON.parse(event.data));
            ws.onclose = () => setTimeout(connect, 1000);
        }

        function send(predict) {
            state.player = document.getElementById('player').value;
            state.predict = predict;
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify(state));
            }
        }

        function plot(id, figure) {
            if (figure && figure.data) {
                Plotly.react(id, figure.data, figure.layout);
            } else {
                Plotly.purge(id);
            }
        }

        function draw(page) {
            const message = document.getElementById('message');
            if (page.error) {
                message.textContent = page.error;
                message.className = 'message error';
                return;
            }
            message.className = 'message';
            drawSliders(page);

            const prediction = page.prediction;
            message.textContent = prediction ? prediction.message : '';
            plot('salaries', prediction && prediction.salary_chart);
            plot('skills', prediction && prediction.skill_chart);
            document.getElementById('glossary').style.display = prediction ? 'block' : 'none';

            const league = page.league;
            plot('leaders', league && league.leaders_chart);
            plot('efficiency', league && league.efficiency_chart);
        }

        function drawSliders(page) {
            const box = document.getElementById('sliders');
            box.innerHTML = '';
            if (!page.advanced) {
                return;
            }
            for (const c of page.controls) {
                const div = document.createElement('div');
                div.className = 'control';
                const label = document.createElement('label');
                const value = document.createElement('span');
                value.textContent = ' ' + c.value;
                label.textContent = c.name;
                label.appendChild(value);
                const input = document.createElement('input');
                input.type = 'range';
                input.min = c.min;
                input.max = c.max;
                input.step = c.step;
                input.value = c.value;
                input.oninput = () => { value.textContent = ' ' + input.value; };
                input.onchange = () => { state.overrides[c.name] = parseFloat(input.value); send(false); };
                const help = document.createElement('small');
                help.textContent = c.description;
                div.append(label, input, help);
                box.appendChild(div);
            }
        }

        async function loadSchema() {
            const resp = await fetch('/api/schema?lang=' + encodeURIComponent(lang));
            const controls = await resp.json();
            const select = document.getElementById('controls');
            for (const c of controls) {
                const option = document.createElement('option');
                option.value = c.name;
                option.textContent = c.name;
                option.selected = c.name === 'Age' || c.name === 'MP';
                select.appendChild(option);
            }
        }

        document.getElementById('player').onchange = () => { state.overrides = {}; send(false); };
        document.getElementById('advanced').onchange = (e) => {
            state.advanced = e.target.checked;
            document.getElementById('extra').style.display = state.advanced ? 'block' : 'none';
            send(false);
        };
        document.getElementById('controls').onchange = (e) => {
            state.controls = Array.from(e.target.selectedOptions).map((o) => o.value);
            send(false);
        };
        document.getElementById('league').onchange = (e) => { state.show_league = e.target.checked; send(false); };
        document.getElementById('predict').onclick = () => send(true);

        loadSchema().then(connect);
    </script>
</body>
</html>
`
