package report

// sampleReport mimics pdf text for a report with two open accounts and one
// closed account, including the page-break blank lines and ragged spacing.
const sampleReport = `CONSUMER CIBIL TRANSUNION SCORE
Name:   RAHUL    SHARMA


ACCOUNT INFORMATION


Member Name
HDFC BANK
Account Type
Credit Card
Account Number
XXXXXXXXXXXX1234
Ownership
Individual
Sanctioned Amount ₹1,50,000
Current Balance ₹12,345
Amount Overdue ₹0
Date Opened / Disbursed 01/04/2019
Date of Last Payment 05/01/2024
Date Closed -
Date Reported And Certified 31/01/2024
Payment Start Date 01/05/2019
Payment End Date -
PAYMENT STATUS
STANDARD
000 000 000
Member Name
ICICI BANK
Account Type
Personal Loan
Account Number
LAP0099887766
Ownership
Joint
Sanctioned Amount ₹5,00,000
Current Balance ₹2,10,500
Amount Overdue ₹1,200
Date Opened / Disbursed 15/08/2021
Date of Last Payment 10/01/2024
Date Closed -
Date Reported And Certified 31/01/2024
Payment Start Date 15/09/2021
Payment End Date 15/08/2026
Collateral Value ₹7,50,000
Collateral Type Property
PAYMENT STATUS
SUB STANDARD

CLOSED ACCOUNTS
Member Name
SBI CARDS
Account Type
Credit Card
Account Number
4000XXXX9876
Ownership
Individual
Sanctioned Amount ₹50,000
Current Balance ₹0
Amount Overdue -
Date Opened / Disbursed 01/01/2015
Date of Last Payment 01/12/2019
Date Closed 31/12/2019
Date Reported And Certified 31/12/2019
PAYMENT STATUS
CLOSED
`
